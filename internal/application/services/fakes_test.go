package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/omarchist/omarchist/internal/application/ports"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
	"github.com/omarchist/omarchist/internal/infrastructure/persistence/memory"
)

var (
	_ repositories.ProfileStore       = (*failingProfileStore)(nil)
	_ repositories.SettingsRepository = (*failingSettingsRepo)(nil)
	_ ports.LiveSyncer                = (*recordingSyncer)(nil)
	_ ports.TemplateProvider          = staticTemplates{}
	_ ports.LiveConfigReader          = (*staticLiveReader)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingProfileStore wraps the in-memory store and fails writes on demand.
type failingProfileStore struct {
	*memory.ProfileStore
	putErr error
}

func (f *failingProfileStore) Put(ctx context.Context, profile *entities.WaybarProfile) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.ProfileStore.Put(ctx, profile)
}

// failingSettingsRepo wraps the in-memory repository and fails loads on demand.
type failingSettingsRepo struct {
	*memory.SettingsRepository
	loadErr error
}

func (f *failingSettingsRepo) Load(ctx context.Context) (entities.AppSettings, error) {
	if f.loadErr != nil {
		return entities.AppSettings{}, f.loadErr
	}
	return f.SettingsRepository.Load(ctx)
}

type recordingSyncer struct {
	synced []string
	state  *ports.LiveSyncState
	err    error
}

func (r *recordingSyncer) Sync(_ context.Context, profile *entities.WaybarProfile) error {
	if r.err != nil {
		return r.err
	}
	r.synced = append(r.synced, profile.ID.String())
	r.state = &ports.LiveSyncState{
		ProfileID: profile.ID.String(),
		Revision:  profile.Revision,
		SyncedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	return nil
}

func (r *recordingSyncer) State(_ context.Context) (*ports.LiveSyncState, error) {
	return r.state, nil
}

func (r *recordingSyncer) last() string {
	if len(r.synced) == 0 {
		return ""
	}
	return r.synced[len(r.synced)-1]
}

type staticTemplates struct{}

func (staticTemplates) DefaultProfile() (*entities.WaybarProfile, error) {
	p := &entities.WaybarProfile{
		Layout: entities.WaybarLayout{
			Left:   []string{"hyprland/workspaces"},
			Center: []string{"clock"},
			Right:  []string{"battery"},
		},
		Modules: map[string]json.RawMessage{
			"clock":   json.RawMessage(`{"format":"{:%H:%M}"}`),
			"battery": json.RawMessage(`{"interval":5}`),
		},
		Globals:      entities.WaybarGlobals{Layer: "top", Position: "top"},
		StyleCSS:     "* { font-family: monospace; }",
		ModuleStyles: map[string]string{"clock": "#clock { margin: 0 6px; }"},
	}
	p.Normalize()
	return p, nil
}

type staticLiveReader struct {
	profile *entities.WaybarProfile
	err     error
}

func (s *staticLiveReader) ReadLive(_ context.Context) (*entities.WaybarProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile.Clone(), nil
}

var errDiskFull = errors.New("no space left on device")
