// Package livesync mirrors the active profile into the directory Waybar
// reads its configuration from, and reads that configuration back.
package livesync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/application/ports"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/infrastructure/filesystem"
	"github.com/omarchist/omarchist/internal/infrastructure/waybar"
)

// MarkerFile records the profile and revision of the last successful sync.
const MarkerFile = ".omarchist-sync.yaml"

// Ensure interface compliance
var _ ports.LiveSyncer = (*Syncer)(nil)

// Syncer writes rendered profiles into a Waybar config directory.
type Syncer struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewSyncer creates a Syncer targeting dir.
func NewSyncer(dir string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{dir: dir, logger: logger, now: time.Now}
}

// Dir returns the live Waybar config directory.
func (s *Syncer) Dir() string {
	return s.dir
}

// Sync renders the profile and replaces config.jsonc and style.css. Each file
// is replaced atomically; the marker is written last, so a failed sync never
// records the new revision.
func (s *Syncer) Sync(ctx context.Context, profile *entities.WaybarProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config, err := waybar.RenderConfig(profile)
	if err != nil {
		return apperrors.NewFileWriteError(filepath.Join(s.dir, waybar.ConfigFile), err)
	}
	files := []struct {
		name string
		data []byte
	}{
		{waybar.StyleFile, waybar.RenderStyle(profile)},
		{waybar.ConfigFile, config},
	}
	for _, f := range files {
		path := filepath.Join(s.dir, f.name)
		if err := filesystem.WriteFileAtomic(path, f.data, 0o644); err != nil {
			return apperrors.NewFileWriteError(path, err)
		}
	}

	marker, err := yaml.Marshal(ports.LiveSyncState{
		ProfileID: profile.ID.String(),
		Revision:  profile.Revision,
		SyncedAt:  s.now().UTC(),
	})
	if err != nil {
		return apperrors.NewFileWriteError(s.markerPath(), err)
	}
	if err := filesystem.WriteFileAtomic(s.markerPath(), marker, 0o644); err != nil {
		return apperrors.NewFileWriteError(s.markerPath(), err)
	}

	s.logger.Info("synced live waybar config", "dir", s.dir, "profile", profile.ID.String(), "revision", profile.Revision)
	return nil
}

// State reads the marker written by the last successful Sync.
func (s *Syncer) State(ctx context.Context) (*ports.LiveSyncState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.markerPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewFileReadError(s.markerPath(), err)
	}

	var state ports.LiveSyncState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, apperrors.NewJSONParseError(s.markerPath(), err)
	}
	if state.ProfileID == "" {
		return nil, apperrors.NewCorruptedError(s.markerPath(), fmt.Errorf("missing profile_id"))
	}
	return &state, nil
}

func (s *Syncer) markerPath() string {
	return filepath.Join(s.dir, MarkerFile)
}
