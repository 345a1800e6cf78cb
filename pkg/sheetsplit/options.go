// Package sheetsplit partitions the sheets of an xlsx workbook into grouped
// output sheets or files while keeping the visual formatting of the source.
package sheetsplit

const (
	// DefaultMaxInputSize is the largest workbook accepted by default (50 MiB).
	DefaultMaxInputSize int64 = 50 * 1024 * 1024
	// DefaultFallbackName replaces names that sanitize to the empty string.
	DefaultFallbackName = "result"
	// DefaultWorkers is the number of groups built concurrently in archive modes.
	DefaultWorkers = 4
	// FormatRowLimit caps how many source rows have their number formats copied.
	FormatRowLimit = 100
	// MaxNameLength is the Excel limit for sheet names, also applied to file names.
	MaxNameLength = 31
	// SingleSheetName is the sheet name used inside per-sheet archive entries.
	SingleSheetName = "Sheet1"

	defaultResultBase = "split_result"
	defaultUnionBase  = "merged_split_result"
)

// CollisionPolicy decides what happens when two outputs sanitize to the same name.
type CollisionPolicy string

const (
	// CollisionSuffix appends " (2)", " (3)", ... to later duplicates.
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionError fails the whole split with ErrNameCollision.
	CollisionError CollisionPolicy = "error"
)

// Option configures loading and assembly.
type Option func(*config)

type config struct {
	maxInputSize int64
	workers      int
	fallbackName string
	collision    CollisionPolicy
	presentation Presentation
	resultBase   string
	unionBase    string
}

func defaultConfig() *config {
	return &config{
		maxInputSize: DefaultMaxInputSize,
		workers:      DefaultWorkers,
		fallbackName: DefaultFallbackName,
		collision:    CollisionSuffix,
		presentation: DefaultPresentation(),
		resultBase:   defaultResultBase,
		unionBase:    defaultUnionBase,
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithMaxInputSize sets the input size limit in bytes. Zero or negative disables the limit.
func WithMaxInputSize(n int64) Option {
	return func(c *config) {
		c.maxInputSize = n
	}
}

// WithWorkers sets how many archive entries are built concurrently.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFallbackName sets the literal used when a name sanitizes to nothing.
func WithFallbackName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.fallbackName = name
		}
	}
}

// WithCollisionPolicy sets how duplicate output names are handled.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(c *config) {
		switch p {
		case CollisionSuffix, CollisionError:
			c.collision = p
		}
	}
}

// WithPresentation overrides the header and zebra styling.
func WithPresentation(p Presentation) Option {
	return func(c *config) {
		c.presentation = p
	}
}

// WithResultNames overrides the suggested artifact base names
// (without extension) for the per-sheet modes and the union mode.
func WithResultNames(result, union string) Option {
	return func(c *config) {
		if result != "" {
			c.resultBase = result
		}
		if union != "" {
			c.unionBase = union
		}
	}
}
