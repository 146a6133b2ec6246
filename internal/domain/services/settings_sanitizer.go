package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/omarchist/omarchist/internal/domain/entities"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

// FieldPolicy decides what happens to a value outside its constraint.
type FieldPolicy string

const (
	// PolicyReject fails the whole document
	PolicyReject FieldPolicy = "reject"
	// PolicyClamp moves the value to the nearest valid value
	PolicyClamp FieldPolicy = "clamp"
)

// SettingsFieldRule documents the constraint and policy of one settings field.
type SettingsFieldRule struct {
	Field      string
	Constraint string
	Policy     FieldPolicy
}

// SettingsRules is the fixed per-field policy table. Boolean fields accept
// every value and are not listed.
var SettingsRules = []SettingsFieldRule{
	{Field: "theme", Constraint: "one of system, light, dark", Policy: PolicyReject},
	{Field: "accent_color", Constraint: "#RRGGBB", Policy: PolicyReject},
	{Field: "language", Constraint: "one of " + strings.Join(entities.Languages, ", "), Policy: PolicyReject},
	{Field: "font_scale", Constraint: fmt.Sprintf("%.2f-%.2f", entities.MinFontScale, entities.MaxFontScale), Policy: PolicyClamp},
	{Field: "autosave_delay_ms", Constraint: fmt.Sprintf("%d-%d", entities.MinAutosaveDelayMs, entities.MaxAutosaveDelayMs), Policy: PolicyClamp},
	{Field: "backup_retention", Constraint: fmt.Sprintf("%d-%d", entities.MinBackupRetention, entities.MaxBackupRetention), Policy: PolicyClamp},
	{Field: "window_width", Constraint: fmt.Sprintf("%d-%d", entities.MinWindowWidth, entities.MaxWindowWidth), Policy: PolicyClamp},
	{Field: "window_height", Constraint: fmt.Sprintf("%d-%d", entities.MinWindowHeight, entities.MaxWindowHeight), Policy: PolicyClamp},
	// An unknown log level clamps to the default level.
	{Field: "log_level", Constraint: "one of " + strings.Join(entities.LogLevels, ", "), Policy: PolicyClamp},
}

// SanitizeResult carries the sanitized document and what was changed.
type SanitizeResult struct {
	Settings   entities.AppSettings
	Adjusted   []entities.FieldViolation // clamped fields
	Violations []entities.FieldViolation // rejected fields
}

// SettingsSanitizer applies SettingsRules to a candidate document.
type SettingsSanitizer struct{}

// NewSettingsSanitizer creates a new SettingsSanitizer.
func NewSettingsSanitizer() *SettingsSanitizer {
	return &SettingsSanitizer{}
}

// Sanitize normalizes and checks every field. When Violations is non-empty
// the document must not be stored.
func (s *SettingsSanitizer) Sanitize(candidate entities.AppSettings) SanitizeResult {
	out := candidate
	defaults := entities.DefaultAppSettings()
	var res SanitizeResult

	reject := func(field, format string, args ...any) {
		res.Violations = append(res.Violations, entities.FieldViolation{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	adjust := func(field, format string, args ...any) {
		res.Adjusted = append(res.Adjusted, entities.FieldViolation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	out.Theme = entities.Theme(strings.ToLower(strings.TrimSpace(string(out.Theme))))
	if !containsTheme(out.Theme) {
		reject("theme", "unknown theme %q", candidate.Theme)
	}

	out.AccentColor = strings.ToUpper(strings.TrimSpace(out.AccentColor))
	if !hexColorPattern.MatchString(out.AccentColor) {
		reject("accent_color", "%q is not a #RRGGBB color", candidate.AccentColor)
	}

	out.Language = strings.ToLower(strings.TrimSpace(out.Language))
	if !containsString(entities.Languages, out.Language) {
		reject("language", "unsupported language %q", candidate.Language)
	}

	if math.IsNaN(out.FontScale) {
		out.FontScale = defaults.FontScale
		adjust("font_scale", "NaN replaced with %.2f", out.FontScale)
	} else if v := clampFloat(out.FontScale, entities.MinFontScale, entities.MaxFontScale); v != out.FontScale {
		adjust("font_scale", "%v clamped to %v", out.FontScale, v)
		out.FontScale = v
	}

	ints := []struct {
		field    string
		value    *int
		min, max int
	}{
		{"autosave_delay_ms", &out.AutosaveDelayMs, entities.MinAutosaveDelayMs, entities.MaxAutosaveDelayMs},
		{"backup_retention", &out.BackupRetention, entities.MinBackupRetention, entities.MaxBackupRetention},
		{"window_width", &out.WindowWidth, entities.MinWindowWidth, entities.MaxWindowWidth},
		{"window_height", &out.WindowHeight, entities.MinWindowHeight, entities.MaxWindowHeight},
	}
	for _, f := range ints {
		if v := clampInt(*f.value, f.min, f.max); v != *f.value {
			adjust(f.field, "%d clamped to %d", *f.value, v)
			*f.value = v
		}
	}

	out.LogLevel = strings.ToLower(strings.TrimSpace(out.LogLevel))
	if !containsString(entities.LogLevels, out.LogLevel) {
		adjust("log_level", "unknown level %q replaced with %q", candidate.LogLevel, defaults.LogLevel)
		out.LogLevel = defaults.LogLevel
	}

	res.Settings = out
	return res
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsTheme(t entities.Theme) bool {
	for _, candidate := range entities.Themes {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
