package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/omarchist/omarchist/internal/application/dto"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/tidwall/gjson"
)

// TableFormatter formats results as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if f.EnableColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// Format writes v. Profile listings, snapshots and stylesheets get dedicated
// layouts; any other value is shown as a key/value list.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) Format(v any) error {
	switch val := v.(type) {
	case *dto.ProfileListResponse:
		return f.formatProfiles(val.Profiles, val.Unreadable)
	case *dto.ProfileChangeResponse:
		fmt.Fprintf(f.writer, "Profile: %s (%s)\n\n", f.colorize(val.Profile.Name, color.Bold), val.Profile.ID)
		return f.formatProfiles(val.Profiles, val.Unreadable)
	case *entities.WaybarConfigSnapshot:
		return f.formatSnapshot(val)
	case *dto.StyleResponse:
		_, err := io.WriteString(f.writer, val.StyleCSS)
		if err == nil && val.StyleCSS != "" && !strings.HasSuffix(val.StyleCSS, "\n") {
			_, err = io.WriteString(f.writer, "\n")
		}
		return err
	default:
		return f.formatFields(v)
	}
}

func (f *TableFormatter) formatProfiles(profiles []dto.ProfileSummary, unreadable []string) error {
	if err := f.writeProfileTable(profiles); err != nil {
		return err
	}
	if len(unreadable) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(f.writer, "\n%s %s\n",
		f.colorize("Unreadable:", color.FgRed, color.Bold), strings.Join(unreadable, ", "))
	return err
}

func (f *TableFormatter) writeProfileTable(profiles []dto.ProfileSummary) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(f.writer, "No profiles found.")
		return err
	}

	w := tabwriter.NewWriter(f.writer, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, "  \tID\tNAME\tCREATED"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range profiles {
		marker := " "
		id := p.ID
		if p.IsActive {
			marker = "*"
			id = f.colorize(p.ID, color.FgGreen, color.Bold)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			marker, id, p.Name, p.CreatedAt.Local().Format(time.DateTime),
		); err != nil {
			return fmt.Errorf("failed to write profile: %w", err)
		}
	}
	return w.Flush()
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSnapshot(s *entities.WaybarConfigSnapshot) error {
	fmt.Fprintf(f.writer, "Profile: %s (%s)\n\n", f.colorize(s.ProfileName, color.Bold), s.ProfileID)

	fmt.Fprintln(f.writer, f.colorize("Layout:", color.Bold))
	for _, region := range s.Layout.Regions() {
		modules := strings.Join(region.Modules, ", ")
		if modules == "" {
			modules = f.colorize("(empty)", color.FgHiBlack)
		}
		fmt.Fprintf(f.writer, "  %-15s %s\n", region.Key, modules)
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, f.colorize("Globals:", color.Bold))
	if err := f.writeFields("  ", s.Globals); err != nil {
		return err
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "%s %d defined, %d style overrides\n",
		f.colorize("Modules:", color.Bold), len(s.Modules), len(s.ModuleStyles))
	if len(s.Passthrough) > 0 {
		fmt.Fprintf(f.writer, "%s %d keys\n", f.colorize("Passthrough:", color.Bold), len(s.Passthrough))
	}
	fmt.Fprintf(f.writer, "%s %d bytes\n", f.colorize("Style:", color.Bold), len(s.StyleCSS))
	return nil
}

func (f *TableFormatter) formatFields(v any) error {
	return f.writeFields("", v)
}

// writeFields prints the top-level JSON fields of v in declaration order.
func (f *TableFormatter) writeFields(indent string, v any) error {
	data, err := toJSON(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		_, err := fmt.Fprintln(f.writer, indent+doc.String())
		return err
	}

	w := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	var writeErr error
	doc.ForEach(func(key, value gjson.Result) bool {
		text := value.String()
		if value.IsObject() || value.IsArray() {
			text = value.Raw
		}
		_, writeErr = fmt.Fprintf(w, "%s%s\t%s\n", indent, f.colorize(key.String(), color.FgCyan), text)
		return writeErr == nil
	})
	if writeErr != nil {
		return writeErr
	}
	return w.Flush()
}
