// Package entities contains domain entities for the omarchist domain model.
// These are pure domain types with NO infrastructure dependencies.
package entities

// Theme selects the application color scheme.
type Theme string

const (
	// ThemeSystem follows the desktop's preference
	ThemeSystem Theme = "system"
	// ThemeLight forces the light scheme
	ThemeLight Theme = "light"
	// ThemeDark forces the dark scheme
	ThemeDark Theme = "dark"
)

// Themes lists every accepted theme value.
var Themes = []Theme{ThemeSystem, ThemeLight, ThemeDark}

// Languages lists every accepted UI language code.
var Languages = []string{"en", "de", "es", "fr", "pt", "ja"}

// LogLevels lists every accepted log level, most to least severe.
var LogLevels = []string{"error", "warn", "info", "debug"}

// Numeric bounds for AppSettings fields.
const (
	MinFontScale = 0.75
	MaxFontScale = 1.5

	MinAutosaveDelayMs = 250
	MaxAutosaveDelayMs = 10000

	MinBackupRetention = 0
	MaxBackupRetention = 50

	MinWindowWidth  = 800
	MaxWindowWidth  = 7680
	MinWindowHeight = 600
	MaxWindowHeight = 4320
)

// AppSettings is the global application settings document.
// The caller always sends a complete document; there is no partial patch.
//
// Invariants (enforced by services.SettingsSanitizer):
// - Enum fields hold a listed value
// - Numeric fields lie within their Min/Max bounds
// - AccentColor is a #RRGGBB hex color
type AppSettings struct {
	Theme                     Theme   `json:"theme" yaml:"theme" toml:"theme"`
	AccentColor               string  `json:"accent_color" yaml:"accent_color" toml:"accent_color"`
	Language                  string  `json:"language" yaml:"language" toml:"language"`
	FontScale                 float64 `json:"font_scale" yaml:"font_scale" toml:"font_scale"`
	AutosaveDelayMs           int     `json:"autosave_delay_ms" yaml:"autosave_delay_ms" toml:"autosave_delay_ms"`
	BackupRetention           int     `json:"backup_retention" yaml:"backup_retention" toml:"backup_retention"`
	WindowWidth               int     `json:"window_width" yaml:"window_width" toml:"window_width"`
	WindowHeight              int     `json:"window_height" yaml:"window_height" toml:"window_height"`
	LogLevel                  string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	AutoApplyTheme            bool    `json:"auto_apply_theme" yaml:"auto_apply_theme" toml:"auto_apply_theme"`
	RestartWaybarOnSave       bool    `json:"restart_waybar_on_save" yaml:"restart_waybar_on_save" toml:"restart_waybar_on_save"`
	ConfirmDestructiveActions bool    `json:"confirm_destructive_actions" yaml:"confirm_destructive_actions" toml:"confirm_destructive_actions"`
	ShowWelcome               bool    `json:"show_welcome" yaml:"show_welcome" toml:"show_welcome"`
}

// DefaultAppSettings returns the built-in default document.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Theme:                     ThemeSystem,
		AccentColor:               "#7AA2F7",
		Language:                  "en",
		FontScale:                 1.0,
		AutosaveDelayMs:           800,
		BackupRetention:           5,
		WindowWidth:               1280,
		WindowHeight:              800,
		LogLevel:                  "info",
		AutoApplyTheme:            true,
		RestartWaybarOnSave:       true,
		ConfirmDestructiveActions: true,
		ShowWelcome:               true,
	}
}
