// Package output renders command results for the terminal or for scripts.
package output

import (
	"fmt"
	"io"
)

// Formatter writes one command result.
type Formatter interface {
	Format(v any) error
}

// Options configures formatter construction.
type Options struct {
	// Color enables ANSI colors in table output.
	Color bool
}

// FormatterFactory creates formatters by name.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(format string, writer io.Writer, options Options) (Formatter, error) {
	switch format {
	case "table":
		t := NewTableFormatter(writer)
		t.EnableColor = options.Color
		return t, nil
	case "json":
		return NewJSONFormatter(writer), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "toml":
		return NewTOMLFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml", "toml"}
}
