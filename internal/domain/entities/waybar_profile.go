package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/omarchist/omarchist/internal/domain/values"
)

// ProfileFormatVersion is written to every profile's metadata.
const ProfileFormatVersion = "1.0.0"

// MaxProfileNameLength bounds human-readable profile names.
const MaxProfileNameLength = 64

// Top-level Waybar keys holding the module layout.
const (
	LayoutKeyLeft   = "modules-left"
	LayoutKeyCenter = "modules-center"
	LayoutKeyRight  = "modules-right"
)

// LayoutKeys lists the layout keys in render order.
var LayoutKeys = []string{LayoutKeyLeft, LayoutKeyCenter, LayoutKeyRight}

// GlobalKeys lists the top-level Waybar keys modeled by WaybarGlobals.
var GlobalKeys = []string{
	"layer", "position", "height", "width", "spacing", "margin",
	"exclusive", "reload_style_on_change", "output",
}

var (
	validPositions = []string{"top", "bottom", "left", "right"}
	validLayers    = []string{"top", "bottom", "overlay"}
)

// WaybarLayout places module identifiers into the bar's three regions.
type WaybarLayout struct {
	Left   []string `json:"modules-left"`
	Center []string `json:"modules-center"`
	Right  []string `json:"modules-right"`
}

// LayoutRegion is one bar region and the modules placed in it.
type LayoutRegion struct {
	Key     string
	Modules []string
}

// Regions returns the layout keyed by Waybar key, in render order.
func (l WaybarLayout) Regions() []LayoutRegion {
	return []LayoutRegion{
		{Key: LayoutKeyLeft, Modules: l.Left},
		{Key: LayoutKeyCenter, Modules: l.Center},
		{Key: LayoutKeyRight, Modules: l.Right},
	}
}

// WaybarGlobals holds bar-wide options.
// Unset pointers are omitted from the rendered config so Waybar applies its own defaults.
type WaybarGlobals struct {
	Layer               string          `json:"layer,omitempty"`
	Position            string          `json:"position,omitempty"`
	Height              *int            `json:"height,omitempty"`
	Width               *int            `json:"width,omitempty"`
	Spacing             *int            `json:"spacing,omitempty"`
	Margin              string          `json:"margin,omitempty"`
	Exclusive           *bool           `json:"exclusive,omitempty"`
	ReloadStyleOnChange *bool           `json:"reload_style_on_change,omitempty"`
	Output              json.RawMessage `json:"output,omitempty"`
}

// WaybarProfile is a named, complete Waybar configuration bundle.
// This is the aggregate root of the profile repository.
//
// Invariants Enforced (see Validate):
// - Name is non-empty and bounded
// - Layout entries and module IDs are non-empty
// - Module configs are JSON objects
// - Passthrough keys never shadow layout, global or module keys
type WaybarProfile struct {
	ID            values.ProfileID
	Name          string
	FormatVersion string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Revision      string

	Layout       WaybarLayout
	Modules      map[string]json.RawMessage
	Globals      WaybarGlobals
	Passthrough  map[string]json.RawMessage
	StyleCSS     string
	ModuleStyles map[string]string
}

// FieldViolation describes one failed constraint.
type FieldViolation struct {
	Field   string
	Message string
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Normalize replaces nil collections with empty ones and compacts raw JSON
// so that equal documents compare equal after a disk round-trip.
func (p *WaybarProfile) Normalize() {
	if p.Layout.Left == nil {
		p.Layout.Left = []string{}
	}
	if p.Layout.Center == nil {
		p.Layout.Center = []string{}
	}
	if p.Layout.Right == nil {
		p.Layout.Right = []string{}
	}
	p.Modules = compactRawMap(p.Modules)
	p.Passthrough = compactRawMap(p.Passthrough)
	if len(p.Globals.Output) > 0 {
		p.Globals.Output = compactRaw(p.Globals.Output)
	}
	if p.ModuleStyles == nil {
		p.ModuleStyles = map[string]string{}
	}
}

// Validate checks the profile's invariants and returns every violation found.
func (p *WaybarProfile) Validate() []FieldViolation {
	var violations []FieldViolation
	add := func(field, format string, args ...any) {
		violations = append(violations, FieldViolation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if err := ValidateProfileName(p.Name); err != nil {
		add("name", "%v", err)
	}

	for _, region := range p.Layout.Regions() {
		for i, moduleID := range region.Modules {
			if strings.TrimSpace(moduleID) == "" {
				add(fmt.Sprintf("layout.%s[%d]", region.Key, i), "module identifier cannot be empty")
			}
		}
	}

	reserved := make(map[string]bool, len(LayoutKeys)+len(GlobalKeys))
	for _, k := range LayoutKeys {
		reserved[k] = true
	}
	for _, k := range GlobalKeys {
		reserved[k] = true
	}

	for _, id := range sortedKeys(p.Modules) {
		if strings.TrimSpace(id) == "" {
			add("modules", "module identifier cannot be empty")
			continue
		}
		if reserved[id] {
			add("modules."+id, "key is managed by the layout or globals section")
			continue
		}
		raw := bytes.TrimSpace(p.Modules[id])
		if !json.Valid(raw) || len(raw) == 0 || raw[0] != '{' {
			add("modules."+id, "module configuration must be a JSON object")
		}
	}

	violations = append(violations, p.Globals.validate()...)

	for _, key := range sortedKeys(p.Passthrough) {
		switch {
		case strings.TrimSpace(key) == "":
			add("passthrough", "key cannot be empty")
		case reserved[key]:
			add("passthrough."+key, "key is managed by the layout or globals section")
		case p.Modules[key] != nil:
			add("passthrough."+key, "key collides with a module definition")
		case !json.Valid(p.Passthrough[key]):
			add("passthrough."+key, "value is not valid JSON")
		}
	}

	for _, moduleID := range sortedKeys(p.ModuleStyles) {
		switch {
		case strings.TrimSpace(moduleID) == "":
			add("module_styles", "module identifier cannot be empty")
		case strings.ContainsFunc(moduleID, unicode.IsSpace), strings.Contains(moduleID, "*/"):
			add("module_styles."+moduleID, "module identifier cannot contain whitespace or \"*/\"")
		}
	}

	return violations
}

func (g WaybarGlobals) validate() []FieldViolation {
	var violations []FieldViolation
	if g.Position != "" && !contains(validPositions, g.Position) {
		violations = append(violations, FieldViolation{
			Field:   "globals.position",
			Message: fmt.Sprintf("%q is not one of %s", g.Position, strings.Join(validPositions, ", ")),
		})
	}
	if g.Layer != "" && !contains(validLayers, g.Layer) {
		violations = append(violations, FieldViolation{
			Field:   "globals.layer",
			Message: fmt.Sprintf("%q is not one of %s", g.Layer, strings.Join(validLayers, ", ")),
		})
	}
	for _, dim := range []struct {
		field string
		value *int
	}{
		{"globals.height", g.Height},
		{"globals.width", g.Width},
		{"globals.spacing", g.Spacing},
	} {
		if dim.value != nil && *dim.value < 0 {
			violations = append(violations, FieldViolation{Field: dim.field, Message: "must not be negative"})
		}
	}
	if len(g.Output) > 0 && !json.Valid(g.Output) {
		violations = append(violations, FieldViolation{Field: "globals.output", Message: "value is not valid JSON"})
	}
	return violations
}

// ValidateProfileName checks a human-readable profile name.
func ValidateProfileName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if len([]rune(name)) > MaxProfileNameLength {
		return fmt.Errorf("profile name exceeds %d characters", MaxProfileNameLength)
	}
	return nil
}

// ReplaceContent overwrites every configuration fragment with those of src,
// keeping identity and timestamps.
func (p *WaybarProfile) ReplaceContent(src *WaybarProfile) {
	clone := src.Clone()
	p.Layout = clone.Layout
	p.Modules = clone.Modules
	p.Globals = clone.Globals
	p.Passthrough = clone.Passthrough
	p.StyleCSS = clone.StyleCSS
	p.ModuleStyles = clone.ModuleStyles
}

// Clone returns a deep copy.
func (p *WaybarProfile) Clone() *WaybarProfile {
	out := *p
	out.Layout = WaybarLayout{
		Left:   append([]string{}, p.Layout.Left...),
		Center: append([]string{}, p.Layout.Center...),
		Right:  append([]string{}, p.Layout.Right...),
	}
	out.Modules = cloneRawMap(p.Modules)
	out.Passthrough = cloneRawMap(p.Passthrough)
	out.Globals = p.Globals.clone()
	out.ModuleStyles = make(map[string]string, len(p.ModuleStyles))
	for k, v := range p.ModuleStyles {
		out.ModuleStyles[k] = v
	}
	return &out
}

func (g WaybarGlobals) clone() WaybarGlobals {
	out := g
	out.Height = cloneInt(g.Height)
	out.Width = cloneInt(g.Width)
	out.Spacing = cloneInt(g.Spacing)
	out.Exclusive = cloneBool(g.Exclusive)
	out.ReloadStyleOnChange = cloneBool(g.ReloadStyleOnChange)
	if g.Output != nil {
		out.Output = append(json.RawMessage{}, g.Output...)
	}
	return out
}

// SortedModuleStyleIDs returns module style keys in lexicographic order.
func (p *WaybarProfile) SortedModuleStyleIDs() []string {
	ids := make([]string, 0, len(p.ModuleStyles))
	for id := range p.ModuleStyles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func compactRawMap(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = compactRaw(v)
	}
	return out
}

// compactRaw leaves invalid JSON untouched so Validate can report it.
func compactRaw(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return append(json.RawMessage{}, raw...)
	}
	return json.RawMessage(buf.Bytes())
}

func cloneRawMap(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage{}, v...)
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
