package output

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// YAMLFormatter writes results as YAML.
// Values go through their JSON encoding first so field names and raw module
// configs match the JSON output.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes v as YAML.
func (f *YAMLFormatter) Format(v any) error {
	data, err := toJSON(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return fmt.Errorf("converting result to yaml: %w", err)
	}
	_, err = f.writer.Write(out)
	return err
}
