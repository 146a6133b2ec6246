package output

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONFormatter writes results as indented JSON.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes v as JSON followed by a newline.
func (f *JSONFormatter) Format(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// toJSON encodes v without HTML escaping so CSS and Pango markup survive.
func toJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
