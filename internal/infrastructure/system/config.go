// Package system provides infrastructure for system-level configuration.
// This includes loading the optional config file
// (~/.config/omarchist/config.yaml) and resolving the directories omarchist
// reads and writes.
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"
)

// AppName names the per-user config and data directories.
const AppName = "omarchist"

// OutputFormats lists the accepted values for Config.Output.
var OutputFormats = []string{"table", "json", "yaml", "toml"}

// Config represents the global configuration file (~/.config/omarchist/config.yaml).
// This is infrastructure-level configuration separate from the settings document.
type Config struct {
	// DataDir holds settings.json and the profile store.
	DataDir string `yaml:"data_dir"`

	// WaybarDir is the directory Waybar reads config.jsonc and style.css from.
	WaybarDir string `yaml:"waybar_dir"`

	// Output is the default output format: "table", "json", "yaml" or "toml".
	Output string `yaml:"output"`

	// AssumeYes skips interactive confirmations.
	AssumeYes bool `yaml:"assume_yes"`
}

// Overrides carries command-line and environment values that take precedence
// over the config file. Empty strings leave the configured value in place.
type Overrides struct {
	DataDir   string
	WaybarDir string
	Output    string
	AssumeYes bool
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/omarchist/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   filepath.Join(dataHome(), AppName),
		WaybarDir: filepath.Join(configHome(), "waybar"),
		Output:    "table",
	}
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
// Fields missing from the file keep their defaults.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	//nolint:gosec // G304: path is the user-provided config file
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	config.DataDir = expandHome(config.DataDir)
	config.WaybarDir = expandHome(config.WaybarDir)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system config %s: %w", path, err)
	}
	return config, nil
}

// ApplyOverrides replaces configured values with any non-empty override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = expandHome(o.DataDir)
	}
	if o.WaybarDir != "" {
		c.WaybarDir = expandHome(o.WaybarDir)
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.AssumeYes {
		c.AssumeYes = true
	}
}

// Validate checks the config for values that cannot be used.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.WaybarDir == "" {
		return fmt.Errorf("waybar_dir cannot be empty")
	}
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("unsupported output format %q (supported: %v)", c.Output, OutputFormats)
	}
	return nil
}

// dataHome honors XDG_DATA_HOME, falling back to ~/.local/share.
func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".local", "share")
}

func configHome() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".config")
}

func expandHome(path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func hasHomePrefix(path string) bool {
	return len(path) > 1 && path[0] == '~' && path[1] == '/'
}
