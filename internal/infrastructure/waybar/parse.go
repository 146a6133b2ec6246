package waybar

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// ErrSyntax marks a config that is not valid JSONC.
var ErrSyntax = errors.New("invalid JSONC")

// ShapeError reports a config that parses but has an unexpected structure.
type ShapeError struct {
	Key     string
	Message string
}

func (e *ShapeError) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// ParseConfig splits a Waybar JSONC config into profile content. Comments and
// trailing commas are accepted. When the file holds an array of bars, the
// first bar is used. Layout keys and known global keys are modeled; any other
// object-valued key is a module definition; everything else is passthrough.
func ParseConfig(data []byte) (*entities.WaybarProfile, error) {
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		return nil, ErrSyntax
	}

	root := gjson.ParseBytes(clean)
	if root.IsArray() {
		bars := root.Array()
		if len(bars) == 0 {
			return nil, &ShapeError{Message: "config holds no bars"}
		}
		root = bars[0]
	}
	if !root.IsObject() {
		return nil, &ShapeError{Message: "config root must be an object"}
	}

	p := &entities.WaybarProfile{
		Modules:     map[string]json.RawMessage{},
		Passthrough: map[string]json.RawMessage{},
	}
	globals := map[string]json.RawMessage{}
	isGlobal := make(map[string]bool, len(entities.GlobalKeys))
	for _, k := range entities.GlobalKeys {
		isGlobal[k] = true
	}

	var shapeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		raw := json.RawMessage(value.Raw)
		switch {
		case k == entities.LayoutKeyLeft || k == entities.LayoutKeyCenter || k == entities.LayoutKeyRight:
			modules, err := parseLayout(k, value)
			if err != nil {
				shapeErr = err
				return false
			}
			switch k {
			case entities.LayoutKeyLeft:
				p.Layout.Left = modules
			case entities.LayoutKeyCenter:
				p.Layout.Center = modules
			default:
				p.Layout.Right = modules
			}
		case isGlobal[k]:
			globals[k] = raw
		case value.IsObject():
			p.Modules[k] = raw
		default:
			p.Passthrough[k] = raw
		}
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}

	if len(globals) > 0 {
		encoded, err := json.Marshal(globals)
		if err != nil {
			return nil, &ShapeError{Message: err.Error()}
		}
		if err := json.Unmarshal(encoded, &p.Globals); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, &ShapeError{Key: typeErr.Field, Message: fmt.Sprintf("expected %s", typeErr.Type)}
			}
			return nil, &ShapeError{Message: err.Error()}
		}
	}

	p.Normalize()
	return p, nil
}

func parseLayout(key string, value gjson.Result) ([]string, error) {
	if !value.IsArray() {
		return nil, &ShapeError{Key: key, Message: "expected an array of module names"}
	}
	var modules []string
	for _, item := range value.Array() {
		if item.Type != gjson.String {
			return nil, &ShapeError{Key: key, Message: "expected an array of module names"}
		}
		modules = append(modules, item.String())
	}
	return modules, nil
}

// ParseStyle splits a stylesheet rendered by RenderStyle back into the global
// CSS and per-module overrides. A stylesheet without module markers is
// returned whole as global CSS.
func ParseStyle(data []byte) (string, map[string]string) {
	css := string(data)
	styles := map[string]string{}

	matches := moduleMarker.FindAllStringSubmatchIndex(css, -1)
	if len(matches) == 0 {
		return css, styles
	}

	global := css[:matches[0][0]]
	if strings.HasSuffix(global, "\n\n") {
		global = strings.TrimSuffix(global, "\n")
	}
	for i, m := range matches {
		id := css[m[2]:m[3]]
		end := len(css)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		styles[id] = strings.TrimSpace(css[m[1]:end])
	}
	return global, styles
}
