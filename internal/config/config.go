package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

var classNamePattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

type Config struct {
	Annotate Annotate `yaml:"annotate"`
	Page     Page     `yaml:"page"`
	Report   Report   `yaml:"report"`
	Logging  Logging  `yaml:"logging"`
}

type Annotate struct {
	MarkerClass string        `yaml:"marker_class"`
	ClassPrefix string        `yaml:"class_prefix"`
	Interval    time.Duration `yaml:"interval"`
	Timezone    string        `yaml:"timezone"`
}

type Page struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

type Report struct {
	DataDir string        `yaml:"data_dir"`
	Output  string        `yaml:"output"`
	Refresh time.Duration `yaml:"refresh"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for libloans.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "libloans")
}

// DataDir returns the XDG data directory for libloans.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "libloans")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/libloans/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults and validating.
func parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Annotate: Annotate{
			MarkerClass: "date",
			ClassPrefix: "color-",
			Interval:    time.Hour,
			Timezone:    "Local",
		},
		Report: Report{
			Output:  "loans.html",
			Refresh: time.Hour,
		},
		Logging: Logging{Level: "INFO"},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Annotate.Validate(); err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Validate checks the annotator settings.
func (a *Annotate) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.MarkerClass, validation.Required, validation.Match(classNamePattern)),
		validation.Field(&a.ClassPrefix, validation.Required, validation.Match(regexp.MustCompile(`^[_a-zA-Z0-9-]*$`))),
		validation.Field(&a.Interval, validation.Required, validation.Min(time.Minute)),
		validation.Field(&a.Timezone, validation.By(func(any) error {
			_, err := a.Location()
			return err
		})),
	)
}

// Location resolves the configured timezone. Empty and "Local" mean the
// system zone.
func (a *Annotate) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", a.Timezone)
	}
	return loc, nil
}

// Validate checks the report settings.
func (r *Report) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Output, validation.Required),
		validation.Field(&r.Refresh, validation.Min(time.Duration(0))),
	)
}

// GetDataDir returns the effective snapshot directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Report.DataDir != "" {
		return c.Report.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
