// Package templates provides the Waybar configuration bundled with omarchist.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/omarchist/omarchist/internal/application/ports"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/infrastructure/waybar"
)

//go:embed waybar
var waybarTemplates embed.FS

const (
	configPath = "waybar/config.jsonc"
	stylePath  = "waybar/style.css"
	modulesDir = "waybar/modules"
)

// moduleFileSeparator stands in for "/" in module stylesheet file names,
// e.g. custom__omarchy.css holds the override for custom/omarchy.
const moduleFileSeparator = "__"

// Ensure interface compliance
var _ ports.TemplateProvider = (*Bundled)(nil)

// Bundled serves the embedded default profile content.
type Bundled struct {
	once    sync.Once
	profile *entities.WaybarProfile
	err     error
}

// NewBundled creates a provider over the embedded templates.
func NewBundled() *Bundled {
	return &Bundled{}
}

// DefaultProfile returns a fresh copy of the bundled content. Identity fields
// are left empty for the caller to assign.
func (b *Bundled) DefaultProfile() (*entities.WaybarProfile, error) {
	b.once.Do(func() {
		b.profile, b.err = load(waybarTemplates)
	})
	if b.err != nil {
		return nil, b.err
	}
	return b.profile.Clone(), nil
}

func load(fsys fs.FS) (*entities.WaybarProfile, error) {
	config, err := fs.ReadFile(fsys, configPath)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", configPath, err)
	}
	profile, err := waybar.ParseConfig(config)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", configPath, err)
	}

	style, err := fs.ReadFile(fsys, stylePath)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", stylePath, err)
	}
	profile.StyleCSS = string(style)

	profile.ModuleStyles, err = moduleStyles(fsys)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	if violations := profile.Validate(); len(violations) > 0 {
		// Name is assigned by the caller; every other violation is a broken template.
		for _, v := range violations {
			if v.Field != "name" {
				return nil, fmt.Errorf("invalid template: %s", v)
			}
		}
	}
	return profile, nil
}

func moduleStyles(fsys fs.FS) (map[string]string, error) {
	styles := map[string]string{}

	err := fs.WalkDir(fsys, modulesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".css") {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		// Use filename without .css as module id
		name := strings.TrimSuffix(path.Base(p), ".css")
		id := strings.ReplaceAll(name, moduleFileSeparator, "/")
		styles[id] = strings.TrimSpace(string(content))

		return nil
	})
	if err != nil {
		return nil, err
	}
	return styles, nil
}
