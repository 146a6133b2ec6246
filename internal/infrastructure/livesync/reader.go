package livesync

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/application/ports"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/infrastructure/waybar"
)

// legacyConfigFile is the name Waybar falls back to when config.jsonc is absent.
const legacyConfigFile = "config"

var _ ports.LiveConfigReader = (*Reader)(nil)

// Reader parses the configuration currently in a Waybar config directory.
type Reader struct {
	dir string
}

// NewReader creates a Reader for dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// ReadLive parses config.jsonc (or config) and style.css. A missing
// stylesheet yields empty CSS.
func (r *Reader) ReadLive(ctx context.Context) (*entities.WaybarProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, data, err := r.readConfig()
	if err != nil {
		return nil, err
	}

	profile, err := waybar.ParseConfig(data)
	if err != nil {
		var shape *waybar.ShapeError
		if errors.As(err, &shape) {
			return nil, apperrors.NewCorruptedError(path, err)
		}
		return nil, apperrors.NewJSONParseError(path, err)
	}

	stylePath := filepath.Join(r.dir, waybar.StyleFile)
	css, err := os.ReadFile(stylePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, apperrors.NewFileReadError(stylePath, err)
	default:
		profile.StyleCSS, profile.ModuleStyles = waybar.ParseStyle(css)
	}
	return profile, nil
}

func (r *Reader) readConfig() (string, []byte, error) {
	var lastErr error
	for _, name := range []string{waybar.ConfigFile, legacyConfigFile} {
		path := filepath.Join(r.dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return path, nil, apperrors.NewFileReadError(path, err)
		}
		lastErr = apperrors.NewFileReadError(path, err)
	}
	return "", nil, lastErr
}
