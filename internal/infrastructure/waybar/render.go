// Package waybar reads and writes Waybar's own file formats: the JSONC bar
// config and the GTK stylesheet.
package waybar

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Live file names inside the Waybar config directory.
const (
	ConfigFile = "config.jsonc"
	StyleFile  = "style.css"
)

var prettyOptions = &pretty.Options{Width: 100, Prefix: "", Indent: "  ", SortKeys: false}

// moduleMarker introduces a per-module override block in the rendered stylesheet.
var moduleMarker = regexp.MustCompile(`(?m)^/\* module: (\S+) \*/$`)

// RenderConfig produces the JSONC bar config for a profile. Keys are written
// in a fixed order: passthrough, globals, layout, then modules by id.
func RenderConfig(p *entities.WaybarProfile) ([]byte, error) {
	doc := []byte(`{}`)
	set := func(key string, raw []byte) error {
		var err error
		doc, err = sjson.SetRawBytes(doc, gjson.Escape(key), raw)
		if err != nil {
			return fmt.Errorf("setting %q: %w", key, err)
		}
		return nil
	}

	for _, key := range sortedKeys(p.Passthrough) {
		if err := set(key, p.Passthrough[key]); err != nil {
			return nil, err
		}
	}

	globals, err := json.Marshal(p.Globals)
	if err != nil {
		return nil, fmt.Errorf("encoding globals: %w", err)
	}
	var setErr error
	gjson.ParseBytes(globals).ForEach(func(key, value gjson.Result) bool {
		setErr = set(key.String(), []byte(value.Raw))
		return setErr == nil
	})
	if setErr != nil {
		return nil, setErr
	}

	for _, region := range p.Layout.Regions() {
		modules := region.Modules
		if modules == nil {
			modules = []string{}
		}
		raw, err := json.Marshal(modules)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", region.Key, err)
		}
		if err := set(region.Key, raw); err != nil {
			return nil, err
		}
	}

	for _, id := range sortedKeys(p.Modules) {
		if err := set(id, p.Modules[id]); err != nil {
			return nil, err
		}
	}

	header := fmt.Sprintf("// Generated by omarchist from profile %q. Changes here are replaced on the next sync.\n", p.ID.String())
	return append([]byte(header), pretty.PrettyOptions(doc, prettyOptions)...), nil
}

// RenderStyle produces the live stylesheet: the global CSS followed by one
// block per module override, in module id order.
func RenderStyle(p *entities.WaybarProfile) []byte {
	var b strings.Builder
	b.WriteString(p.StyleCSS)

	for _, id := range p.SortedModuleStyleIDs() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "/* module: %s */\n", id)
		b.WriteString(p.ModuleStyles[id])
		if !strings.HasSuffix(p.ModuleStyles[id], "\n") {
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
