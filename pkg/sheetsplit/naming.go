package sheetsplit

import (
	"fmt"
	"strings"
)

var illegalNameChars = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	"*", "_",
	"?", "_",
	":", "_",
	"[", "_",
	"]", "_",
)

// nameEdgeChars are stripped from both ends of a sanitized name. The
// apostrophe is included because Excel rejects it at the edges of sheet names.
const nameEdgeChars = "_- '"

// NameSanitizer turns prefix, group key, suffix and sheet name into a legal
// sheet or file name.
type NameSanitizer struct {
	Fallback string
}

// Sanitize joins the non-empty parts with "-", replaces characters Excel does
// not accept with "_", truncates to MaxNameLength characters and trims
// separators from both ends. It never returns an empty string.
func (n NameSanitizer) Sanitize(prefix, suffix string, key GroupKey, sheetName string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{prefix, strings.Join(key, "-"), suffix, sheetName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if name := cleanName(strings.Join(parts, "-")); name != "" {
		return name
	}
	// the fallback obeys the same rules; one that cleans to nothing is replaced
	if name := cleanName(strings.TrimSpace(n.Fallback)); name != "" {
		return name
	}
	return DefaultFallbackName
}

func cleanName(s string) string {
	s = illegalNameChars.Replace(s)
	return strings.Trim(truncateRunes(s, MaxNameLength), nameEdgeChars)
}

// SanitizeName sanitizes with the default fallback name.
func SanitizeName(prefix, suffix string, key GroupKey, sheetName string) string {
	return NameSanitizer{Fallback: DefaultFallbackName}.Sanitize(prefix, suffix, key, sheetName)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// nameRegistry hands out unique output names within one workbook or archive.
// Names are compared case-insensitively, as Excel does for sheet names.
type nameRegistry struct {
	policy CollisionPolicy
	used   map[string]struct{}
}

func newNameRegistry(policy CollisionPolicy) *nameRegistry {
	return &nameRegistry{policy: policy, used: make(map[string]struct{})}
}

// claim reserves name, or a suffixed variant of it, and returns the reserved name.
func (r *nameRegistry) claim(name string) (string, error) {
	if r.take(name) {
		return name, nil
	}
	if r.policy == CollisionError {
		return "", fmt.Errorf("%w: %q", ErrNameCollision, name)
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate := truncateRunes(name, MaxNameLength-len(suffix)) + suffix
		if r.take(candidate) {
			return candidate, nil
		}
	}
}

func (r *nameRegistry) take(name string) bool {
	k := strings.ToLower(name)
	if _, dup := r.used[k]; dup {
		return false
	}
	r.used[k] = struct{}{}
	return true
}
