// Package disk stores settings and Waybar profiles as files under the data directory.
package disk

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
	"github.com/omarchist/omarchist/internal/infrastructure/filesystem"
	"github.com/omarchist/omarchist/internal/infrastructure/validation"
)

// SettingsFileName is the name of the settings document inside the data directory.
const SettingsFileName = "settings.json"

var _ repositories.SettingsRepository = (*SettingsFileStore)(nil)

// SettingsFileStore keeps the settings document as a JSON file.
type SettingsFileStore struct {
	path   string
	schema *validation.SettingsSchema
	logger *slog.Logger
}

// NewSettingsFileStore creates a store for the document at path.
func NewSettingsFileStore(path string, schema *validation.SettingsSchema, logger *slog.Logger) *SettingsFileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsFileStore{path: path, schema: schema, logger: logger}
}

// Path returns the location of the settings document.
func (s *SettingsFileStore) Path() string {
	return s.path
}

// Load reads the document. An absent file yields the defaults. Bytes that are
// not JSON yield json_parse; JSON of the wrong shape yields corrupted. The
// file is never rewritten here.
func (s *SettingsFileStore) Load(ctx context.Context) (entities.AppSettings, error) {
	if err := ctx.Err(); err != nil {
		return entities.AppSettings{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("settings file absent, using defaults", "path", s.path)
		return entities.DefaultAppSettings(), nil
	}
	if err != nil {
		return entities.AppSettings{}, apperrors.NewFileReadError(s.path, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return entities.AppSettings{}, apperrors.NewJSONParseError(s.path, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return entities.AppSettings{}, apperrors.NewCorruptedError(s.path, err)
	}

	// Missing fields keep their defaults.
	settings := entities.DefaultAppSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return entities.AppSettings{}, apperrors.NewCorruptedError(s.path, err)
	}
	return settings, nil
}

// Save atomically replaces the document. The previous document, if any, is
// first copied to a .bak file; a failed copy is logged and does not stop the save.
func (s *SettingsFileStore) Save(ctx context.Context, settings entities.AppSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return apperrors.NewFileWriteError(s.path, err)
	}
	data = append(data, '\n')

	if _, err := os.Stat(s.path); err == nil {
		if err := filesystem.CopyFileAtomic(s.path, s.path+".bak", 0o600); err != nil {
			s.logger.Warn("could not back up settings", "path", s.path, "error", err)
		}
	}

	if err := filesystem.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return apperrors.NewFileWriteError(s.path, err)
	}
	s.logger.Debug("settings written", "path", s.path)
	return nil
}
