package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/locvowork/xlsxsplit/pkg/sheetsplit"
)

// SplitFile is the YAML document holding presentation overrides and
// named split profiles. Either part may be omitted.
type SplitFile struct {
	Presentation *sheetsplit.Presentation `yaml:"presentation"`
	Profiles     []Profile                `yaml:"profiles"`
}

// Profile is a named, reusable split request.
type Profile struct {
	Name       string   `yaml:"name"`
	Sheets     []string `yaml:"sheets"`
	KeyColumns []string `yaml:"key_columns"`
	Prefix     string   `yaml:"prefix"`
	Suffix     string   `yaml:"suffix"`
	Mode       string   `yaml:"mode"`
}

// Request converts the profile into an engine request.
func (p Profile) Request() (sheetsplit.Request, error) {
	mode, err := sheetsplit.ParseMode(p.Mode)
	if err != nil {
		return sheetsplit.Request{}, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return sheetsplit.Request{
		Sheets:     p.Sheets,
		KeyColumns: p.KeyColumns,
		Prefix:     p.Prefix,
		Suffix:     p.Suffix,
		Mode:       mode,
	}, nil
}

// ApplyTo fills the fields of req left empty with the profile's values.
func (p Profile) ApplyTo(req sheetsplit.Request) (sheetsplit.Request, error) {
	base, err := p.Request()
	if err != nil {
		return req, err
	}
	if len(req.Sheets) == 0 {
		req.Sheets = base.Sheets
	}
	if len(req.KeyColumns) == 0 {
		req.KeyColumns = base.KeyColumns
	}
	if req.Prefix == "" {
		req.Prefix = base.Prefix
	}
	if req.Suffix == "" {
		req.Suffix = base.Suffix
	}
	if req.Mode == "" {
		req.Mode = base.Mode
	}
	return req, nil
}

// LoadSplitFile loads a split file from a YAML file
func LoadSplitFile(path string) (*SplitFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening split file: %w", err)
	}
	defer file.Close()

	return LoadSplitFileFromReader(file)
}

// LoadSplitFileFromReader loads a split file from an io.Reader
func LoadSplitFileFromReader(r io.Reader) (*SplitFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading split file: %w", err)
	}

	var sf SplitFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing YAML split file: %w", err)
	}
	if err := sf.validate(); err != nil {
		return nil, fmt.Errorf("validating split file: %w", err)
	}
	return &sf, nil
}

func (sf *SplitFile) validate() error {
	seen := make(map[string]bool)
	for i, p := range sf.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("profile[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("profile[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if _, err := sheetsplit.ParseMode(p.Mode); err != nil {
			return fmt.Errorf("profile[%d]: %w", i, err)
		}
	}
	return nil
}

// Profile returns the named profile.
func (sf *SplitFile) Profile(name string) (Profile, bool) {
	if sf == nil {
		return Profile{}, false
	}
	for _, p := range sf.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// PresentationOrDefault returns the configured presentation with unset parts
// taken from the default.
func (sf *SplitFile) PresentationOrDefault() sheetsplit.Presentation {
	if sf == nil || sf.Presentation == nil {
		return sheetsplit.DefaultPresentation()
	}
	return sf.Presentation.Merge(sheetsplit.DefaultPresentation())
}

// LoadSplitFile loads PROFILES_FILE and PRESENTATION_FILE. The presentation
// of PRESENTATION_FILE wins over one found in PROFILES_FILE. An empty
// SplitFile is returned when neither is set.
func (c *envConfig) LoadSplitFile() (*SplitFile, error) {
	sf := &SplitFile{}
	if c.PROFILES_FILE != "" {
		loaded, err := LoadSplitFile(c.PROFILES_FILE)
		if err != nil {
			return nil, err
		}
		sf = loaded
	}
	if c.PRESENTATION_FILE != "" {
		loaded, err := LoadSplitFile(c.PRESENTATION_FILE)
		if err != nil {
			return nil, err
		}
		if loaded.Presentation != nil {
			sf.Presentation = loaded.Presentation
		}
	}
	return sf, nil
}
