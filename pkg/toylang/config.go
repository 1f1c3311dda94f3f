package toylang

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the optional `toylang.yaml` project file's shape: where to
// look for imported modules, and which function to run by default.
// CLI flags always take precedence over a loaded Config's fields.
type Config struct {
	PackageRoot string   `yaml:"package_root"`
	ImportPaths []string `yaml:"import_paths"`
	Entry       string   `yaml:"entry"`
}

// LoadConfig reads and parses a toylang.yaml project file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options translates a Config into Engine options. Entry is only applied
// when non-empty, so a zero-value Config (or one with no `entry` key)
// leaves Engine's own default ("main") untouched.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Entry != "" {
		opts = append(opts, WithEntry(c.Entry))
	}
	return opts
}
