package waybar

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() *entities.WaybarProfile {
	height := 26
	spacing := 0
	p := &entities.WaybarProfile{
		ID:   values.MustNewProfileID("omarchy"),
		Name: "Omarchy",
		Layout: entities.WaybarLayout{
			Left:  []string{"custom/omarchy", "hyprland/workspaces"},
			Right: []string{"group/tray-expander", "bluetooth", "network", "battery"},
		},
		Modules: map[string]json.RawMessage{
			"custom/omarchy":      json.RawMessage(`{"format":"<span font='omarchy'></span>","on-click":"omarchy-menu"}`),
			"hyprland/workspaces": json.RawMessage(`{"on-click":"activate","format":"{icon}"}`),
			"battery":             json.RawMessage(`{"interval":5,"states":{"warning":20,"critical":10}}`),
			"group/tray-expander": json.RawMessage(`{"orientation":"inherit","modules":["custom/expand-icon","tray"]}`),
		},
		Globals: entities.WaybarGlobals{
			Layer:    "top",
			Position: "top",
			Height:   &height,
			Spacing:  &spacing,
		},
		Passthrough:  map[string]json.RawMessage{"mode": json.RawMessage(`"dock"`)},
		StyleCSS:     "* {\n  font-size: 12px;\n}\n",
		ModuleStyles: map[string]string{"battery": "#battery { min-width: 12px; }", "clock": "#clock { margin-left: 5px; }"},
	}
	p.Normalize()
	return p
}

func TestRenderConfig_KeyOrder(t *testing.T) {
	out, err := RenderConfig(sampleProfile())
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.HasPrefix(text, "// Generated by omarchist"))

	order := []string{`"mode"`, `"layer"`, `"position"`, `"height"`, `"spacing"`,
		`"modules-left"`, `"modules-center"`, `"modules-right"`,
		`"battery"`, `"custom/omarchy"`, `"group/tray-expander"`, `"hyprland/workspaces"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key+":")
		require.NotEqual(t, -1, idx, "missing %s", key)
		assert.Greater(t, idx, last, "%s out of order", key)
		last = idx
	}
	assert.Contains(t, text, `"modules-center": []`)
	assert.NotContains(t, text, `"width"`, "unset globals are omitted")
}

func TestRenderParse_RoundTrip(t *testing.T) {
	want := sampleProfile()

	config, err := RenderConfig(want)
	require.NoError(t, err)
	got, err := ParseConfig(config)
	require.NoError(t, err)

	assert.Equal(t, want.Layout, got.Layout)
	assert.Equal(t, want.Modules, got.Modules)
	assert.Equal(t, want.Globals, got.Globals)
	assert.Equal(t, want.Passthrough, got.Passthrough)

	global, styles := ParseStyle(RenderStyle(want))
	assert.Equal(t, want.StyleCSS, global)
	assert.Equal(t, want.ModuleStyles, styles)
}

func TestRenderStyle(t *testing.T) {
	p := sampleProfile()
	assert.Equal(t,
		"* {\n  font-size: 12px;\n}\n\n/* module: battery */\n#battery { min-width: 12px; }\n\n/* module: clock */\n#clock { margin-left: 5px; }\n",
		string(RenderStyle(p)))

	p.StyleCSS = ""
	p.ModuleStyles = map[string]string{}
	assert.Empty(t, RenderStyle(p))
}

func TestParseStyle_Unmarked(t *testing.T) {
	global, styles := ParseStyle([]byte("window#waybar { background: #1a1b26; }\n"))
	assert.Equal(t, "window#waybar { background: #1a1b26; }\n", global)
	assert.Empty(t, styles)
}

func TestParseConfig_JSONC(t *testing.T) {
	src := `// Omarchy bar
[
  {
    "layer": "top", // keep above windows
    "modules-left": ["hyprland/workspaces",],
    "clock": { "format": "{:%A %H:%M}", },
    "include": ["~/.config/waybar/extra.jsonc"],
    /* block comment */
    "reload_style_on_change": true,
  },
  { "layer": "bottom" }
]`
	p, err := ParseConfig([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "top", p.Globals.Layer)
	require.NotNil(t, p.Globals.ReloadStyleOnChange)
	assert.True(t, *p.Globals.ReloadStyleOnChange)
	assert.Equal(t, []string{"hyprland/workspaces"}, p.Layout.Left)
	assert.Equal(t, []string{}, p.Layout.Center)
	assert.JSONEq(t, `{"format":"{:%A %H:%M}"}`, string(p.Modules["clock"]))
	assert.JSONEq(t, `["~/.config/waybar/extra.jsonc"]`, string(p.Passthrough["include"]))
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		syntax bool
		key    string
	}{
		{name: "truncated", src: `{"layer": "top"`, syntax: true},
		{name: "not json", src: `layer = top`, syntax: true},
		{name: "scalar root", src: `42`},
		{name: "empty bar list", src: `[]`},
		{name: "layout not array", src: `{"modules-left": "clock"}`, key: "modules-left"},
		{name: "layout entry not string", src: `{"modules-right": [1]}`, key: "modules-right"},
		{name: "global type mismatch", src: `{"height": "tall"}`, key: "height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.src))
			require.Error(t, err)
			if tt.syntax {
				assert.ErrorIs(t, err, ErrSyntax)
				return
			}
			var shape *ShapeError
			require.True(t, errors.As(err, &shape))
			assert.Equal(t, tt.key, shape.Key)
		})
	}
}
