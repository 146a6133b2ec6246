package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"
)

// TOMLFormatter writes results as TOML.
// Results that are not objects are written under a "value" key, since a TOML
// document is always a table.
type TOMLFormatter struct {
	writer io.Writer
}

// NewTOMLFormatter creates a new TOML formatter.
func NewTOMLFormatter(w io.Writer) *TOMLFormatter {
	return &TOMLFormatter{writer: w}
}

// Format writes v as TOML.
func (f *TOMLFormatter) Format(v any) error {
	doc, err := toTable(v)
	if err != nil {
		return err
	}
	encoder := toml.NewEncoder(f.writer)
	encoder.Indent = "  "
	return encoder.Encode(doc)
}

func toTable(v any) (map[string]any, error) {
	data, err := toJSON(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}

	normalized := tomlValue(generic)
	if table, ok := normalized.(map[string]any); ok {
		return table, nil
	}
	return map[string]any{"value": normalized}, nil
}

// tomlValue drops nulls, which TOML cannot express, and turns integral
// numbers back into integers.
func tomlValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = tomlValue(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, tomlValue(item))
		}
		return out
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
		return val
	default:
		return val
	}
}
