package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/omarchist/omarchist/internal/application/dto"
	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/values"
	"github.com/omarchist/omarchist/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type waybarFixture struct {
	svc    *WaybarConfigService
	store  *failingProfileStore
	syncer *recordingSyncer
	live   *staticLiveReader
}

func newWaybarFixture(t *testing.T) *waybarFixture {
	t.Helper()
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	f := &waybarFixture{
		store:  &failingProfileStore{ProfileStore: memory.NewProfileStore()},
		syncer: &recordingSyncer{},
		live:   &staticLiveReader{},
	}
	f.svc = NewWaybarConfigService(f.store, staticTemplates{}, f.syncer, discardLogger(),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		WithLiveConfigReader(f.live),
	)
	require.NoError(t, f.svc.Initialize(context.Background()))
	return f
}

// stored reads a profile directly from the store, or nil when absent.
func (f *waybarFixture) stored(t *testing.T, id string) *entities.WaybarProfile {
	t.Helper()
	p, err := f.store.Get(context.Background(), values.MustNewProfileID(id))
	if err != nil {
		return nil
	}
	return p
}

func (f *waybarFixture) activeID(t *testing.T) values.ProfileID {
	t.Helper()
	id, err := f.store.ActiveID(context.Background())
	require.NoError(t, err)
	return id
}

func ids(profiles []dto.ProfileSummary) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

// assertRepositoryInvariant checks that at least one profile exists and the
// active pointer resolves to one of them.
func assertRepositoryInvariant(t *testing.T, f *waybarFixture) {
	t.Helper()
	list, err := f.svc.ListProfiles(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, list.Profiles)

	active := 0
	for _, p := range list.Profiles {
		if p.IsActive {
			active++
			assert.Equal(t, list.ActiveProfileID, p.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestWaybarConfigService_InitializeSeedsDefault(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	list, err := f.svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultProfileID}, ids(list.Profiles))
	assert.Equal(t, DefaultProfileID, list.ActiveProfileID)
	assert.Equal(t, DefaultProfileName, list.Profiles[0].Name)

	require.NoError(t, f.svc.Initialize(ctx))
	list, err = f.svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Profiles, 1, "initialize is idempotent")
}

func TestWaybarConfigService_Scenario(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProfile(ctx, "gruvbox")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "gruvbox"}, ids(created.Profiles))
	assert.Equal(t, "default", created.ActiveProfileID, "create does not change the active profile")
	assert.Equal(t, "gruvbox", created.Profile.ID)
	assert.False(t, created.Profile.IsActive)
	assert.Empty(t, f.syncer.synced)

	selected, err := f.svc.SelectProfile(ctx, "gruvbox")
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", selected.ActiveProfileID)
	assert.True(t, selected.Profile.IsActive)
	assert.Equal(t, "gruvbox", f.syncer.last())

	deleted, err := f.svc.DeleteProfile(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", deleted.ActiveProfileID)
	assert.Equal(t, []string{"gruvbox"}, ids(deleted.Profiles))
	assert.Equal(t, "default", deleted.Profile.ID)
	assert.Len(t, f.syncer.synced, 1, "deleting an inactive profile does not sync")

	_, err = f.svc.DeleteProfile(ctx, "gruvbox")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindConflict)

	list, err := f.svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gruvbox"}, ids(list.Profiles), "failed delete leaves the repository unchanged")
	assert.Equal(t, "gruvbox", list.ActiveProfileID)
	assertRepositoryInvariant(t, f)
}

func TestWaybarConfigService_DeleteActiveFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		create   []string
		selectID string
		deleteID string
		want     string
	}{
		{"default wins", []string{"zeta", "beta", "alpha"}, "zeta", "zeta", "default"},
		{"smallest id without default", []string{"zeta", "beta", "alpha"}, "alpha", "default", "beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWaybarFixture(t)
			ctx := context.Background()

			for _, name := range tt.create {
				_, err := f.svc.CreateProfile(ctx, name)
				require.NoError(t, err)
			}
			_, err := f.svc.SelectProfile(ctx, tt.selectID)
			require.NoError(t, err)

			if tt.deleteID != tt.selectID {
				// Make the profile being deleted the active one first.
				_, err = f.svc.SelectProfile(ctx, tt.deleteID)
				require.NoError(t, err)
				_, err = f.svc.DeleteProfile(ctx, tt.selectID)
				require.NoError(t, err)
			}

			resp, err := f.svc.DeleteProfile(ctx, tt.deleteID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.ActiveProfileID)
			assert.Equal(t, tt.want, f.syncer.last(), "fallback is synced")
			assertRepositoryInvariant(t, f)
		})
	}
}

func TestFallbackProfileID(t *testing.T) {
	meta := func(id string) entities.ProfileMetadata {
		return entities.ProfileMetadata{ID: values.MustNewProfileID(id)}
	}

	entries := []entities.ProfileMetadata{meta("nord"), meta("default"), meta("ayu")}
	assert.Equal(t, "default", FallbackProfileID(entries, values.MustNewProfileID("nord")).String())
	assert.Equal(t, "ayu", FallbackProfileID(entries, values.MustNewProfileID("default")).String())

	entries = []entities.ProfileMetadata{meta("nord"), meta("ayu"), meta("catppuccin")}
	assert.Equal(t, "catppuccin", FallbackProfileID(entries, values.MustNewProfileID("ayu")).String())

	assert.True(t, FallbackProfileID([]entities.ProfileMetadata{meta("nord")}, values.MustNewProfileID("nord")).IsEmpty())
}

func TestWaybarConfigService_RepositoryInvariantAcrossSequence(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := f.svc.CreateProfile(ctx, "One"); return err },
		func() error { _, err := f.svc.CreateProfile(ctx, "Two"); return err },
		func() error { _, err := f.svc.SelectProfile(ctx, "two"); return err },
		func() error { _, err := f.svc.DeleteProfile(ctx, "two"); return err },
		func() error { _, err := f.svc.DeleteProfile(ctx, "default"); return err },
		func() error { _, err := f.svc.SelectProfile(ctx, "missing"); return err },
		func() error { _, err := f.svc.DeleteProfile(ctx, "one"); return err },
		func() error { _, err := f.svc.CreateProfile(ctx, "One"); return err },
	}
	for _, step := range steps {
		_ = step()
		assertRepositoryInvariant(t, f)
	}
}

func TestWaybarConfigService_ProfileErrors(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProfile(ctx, "Default")
	assert.ErrorIs(t, err, apperrors.KindConflict, "name collides with the seeded id")

	_, err = f.svc.CreateProfile(ctx, "   ")
	assert.ErrorIs(t, err, apperrors.KindValidation)

	_, err = f.svc.CreateProfile(ctx, "!!!")
	assert.ErrorIs(t, err, apperrors.KindValidation, "name yields an empty id")

	_, err = f.svc.SelectProfile(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.KindNotFound)

	_, err = f.svc.SelectProfile(ctx, "Not An ID")
	assert.ErrorIs(t, err, apperrors.KindNotFound)

	_, err = f.svc.DeleteProfile(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.KindNotFound)
}

func TestWaybarConfigService_CreateNormalizesName(t *testing.T) {
	f := newWaybarFixture(t)

	resp, err := f.svc.CreateProfile(context.Background(), "  Tokyo Night  ")
	require.NoError(t, err)
	assert.Equal(t, "tokyo-night", resp.Profile.ID)
	assert.Equal(t, "Tokyo Night", resp.Profile.Name)

	stored := f.stored(t, "tokyo-night")
	require.NotNil(t, stored)
	assert.Equal(t, entities.ProfileFormatVersion, stored.FormatVersion)
	assert.NotEmpty(t, stored.Revision)
	assert.Equal(t, []string{"clock"}, stored.Layout.Center, "created from the template")
}

func TestWaybarConfigService_LoadSnapshot(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	snap, err := f.svc.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", snap.ProfileID)
	assert.Equal(t, "Default", snap.ProfileName)
	assert.Equal(t, "* { font-family: monospace; }", snap.StyleCSS)

	require.NoError(t, f.store.SetActive(ctx, values.ProfileID{}))
	_, err = f.svc.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, apperrors.KindNotFound, "unset pointer is not repaired")
	assert.True(t, f.activeID(t).IsEmpty())

	require.NoError(t, f.store.SetActive(ctx, values.MustNewProfileID("ghost")))
	_, err = f.svc.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, apperrors.KindNotFound, "dangling pointer is not repaired")

	_, err = f.svc.SelectProfile(ctx, "default")
	require.NoError(t, err)
	_, err = f.svc.LoadSnapshot(ctx)
	assert.NoError(t, err, "select repairs the pointer")
}

func TestWaybarConfigService_SaveSnapshotWholeReplace(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	before, err := f.svc.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, before.ModuleStyles)
	revisionBefore := f.stored(t, "default").Revision

	t.Run("omitted module styles are cleared", func(t *testing.T) {
		saved, err := f.svc.SaveSnapshot(ctx, dto.SaveWaybarConfigPayload{
			Layout:   entities.WaybarLayout{Left: []string{"clock"}},
			Modules:  map[string]json.RawMessage{"clock": json.RawMessage(`{"interval": 60}`)},
			StyleCSS: "window#waybar { background: #000; }",
		})
		require.NoError(t, err)

		assert.Empty(t, saved.ModuleStyles)
		assert.Equal(t, []string{"clock"}, saved.Layout.Left)
		assert.Empty(t, saved.Layout.Right)
		assert.JSONEq(t, `{"interval":60}`, string(saved.Modules["clock"]))
		assert.Equal(t, "window#waybar { background: #000; }", saved.StyleCSS)
		assert.NotEqual(t, revisionBefore, f.stored(t, "default").Revision)
		assert.Equal(t, "default", f.syncer.last())
	})

	t.Run("copied forward module styles are kept", func(t *testing.T) {
		current, err := f.svc.LoadSnapshot(ctx)
		require.NoError(t, err)

		payload := dto.PayloadFromSnapshot(current)
		payload.ModuleStyles = map[string]string{"clock": "#clock { color: red; }"}
		_, err = f.svc.SaveSnapshot(ctx, payload)
		require.NoError(t, err)

		current, err = f.svc.LoadSnapshot(ctx)
		require.NoError(t, err)
		payload = dto.PayloadFromSnapshot(current)
		payload.StyleCSS = "/* new */"
		saved, err := f.svc.SaveSnapshot(ctx, payload)
		require.NoError(t, err)
		assert.Equal(t, "#clock { color: red; }", saved.ModuleStyles["clock"])
	})

	t.Run("empty module styles clear them", func(t *testing.T) {
		current, err := f.svc.LoadSnapshot(ctx)
		require.NoError(t, err)
		payload := dto.PayloadFromSnapshot(current)
		payload.ModuleStyles = map[string]string{}

		saved, err := f.svc.SaveSnapshot(ctx, payload)
		require.NoError(t, err)
		assert.Empty(t, saved.ModuleStyles)
	})
}

func TestWaybarConfigService_SaveSnapshotValidation(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()
	before := f.stored(t, "default")

	_, err := f.svc.SaveSnapshot(ctx, dto.SaveWaybarConfigPayload{
		Globals:     entities.WaybarGlobals{Position: "diagonal"},
		Passthrough: map[string]json.RawMessage{"modules-left": json.RawMessage(`[]`)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindValidation)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "globals.position", verr.Field)
	assert.Len(t, verr.Details, 2)

	assert.Equal(t, before, f.stored(t, "default"), "rejected payload is not stored")
	assert.Empty(t, f.syncer.synced)

	_, err = f.svc.SaveSnapshot(ctx, dto.SaveWaybarConfigPayload{
		Layout: entities.WaybarLayout{Left: []string{"clock"}},
		Modules: map[string]json.RawMessage{
			"clock":        json.RawMessage(`{}`),
			"modules-left": json.RawMessage(`{"format":"x"}`),
			"height":       json.RawMessage(`{"format":"y"}`),
		},
		ModuleStyles: map[string]string{"clock */": "#clock {}"},
	})
	require.Error(t, err)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "modules.height", verr.Field)
	assert.Equal(t, "key is managed by the layout or globals section", verr.Message)
	assert.Len(t, verr.Details, 3)

	assert.Equal(t, before, f.stored(t, "default"), "rejected payload is not stored")
	assert.Empty(t, f.syncer.synced)
}

func TestWaybarConfigService_SyncFailureKeepsChange(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateProfile(ctx, "gruvbox")
	require.NoError(t, err)

	f.syncer.err = apperrors.NewFileWriteError("/waybar/config.jsonc", errDiskFull)
	_, err = f.svc.SelectProfile(ctx, "gruvbox")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindFileWrite)
	assert.Equal(t, "gruvbox", f.activeID(t).String(), "profile change is not rolled back")

	f.syncer.err = nil
	_, err = f.svc.SelectProfile(ctx, "gruvbox")
	require.NoError(t, err, "repeating the selection repairs the live files")
	assert.Equal(t, "gruvbox", f.syncer.last())
}

func TestWaybarConfigService_StoreFailure(t *testing.T) {
	f := newWaybarFixture(t)
	f.store.putErr = apperrors.NewFileWriteError("/data/profiles", errDiskFull)

	_, err := f.svc.CreateProfile(context.Background(), "gruvbox")
	assert.ErrorIs(t, err, apperrors.KindFileWrite)
	assert.Nil(t, f.stored(t, "gruvbox"))
}

func TestWaybarConfigService_Style(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	style, err := f.svc.GetStyle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "* { font-family: monospace; }", style.StyleCSS)

	saved, err := f.svc.SaveStyle(ctx, "window#waybar { color: white; }")
	require.NoError(t, err)
	assert.Equal(t, "window#waybar { color: white; }", saved.StyleCSS)

	snap, err := f.svc.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#clock { margin: 0 6px; }", snap.ModuleStyles["clock"], "module styles survive a style save")
	assert.Equal(t, []string{"clock"}, snap.Layout.Center, "layout survives a style save")
}

func TestWaybarConfigService_ResetActiveProfile(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateProfile(ctx, "Mine")
	require.NoError(t, err)
	_, err = f.svc.SelectProfile(ctx, "mine")
	require.NoError(t, err)
	created := f.stored(t, "mine").CreatedAt

	_, err = f.svc.SaveSnapshot(ctx, dto.SaveWaybarConfigPayload{StyleCSS: "custom"})
	require.NoError(t, err)

	snap, err := f.svc.ResetActiveProfileToDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mine", snap.ProfileID)
	assert.Equal(t, "Mine", snap.ProfileName)
	assert.Equal(t, "* { font-family: monospace; }", snap.StyleCSS)
	assert.Equal(t, []string{"hyprland/workspaces"}, snap.Layout.Left)
	assert.Equal(t, created, f.stored(t, "mine").CreatedAt)
	assert.Equal(t, "mine", f.syncer.last())
}

func TestWaybarConfigService_ImportLiveProfile(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()
	f.live.profile = &entities.WaybarProfile{
		Layout:      entities.WaybarLayout{Right: []string{"tray"}},
		Modules:     map[string]json.RawMessage{"tray": json.RawMessage(`{"spacing":8}`)},
		Passthrough: map[string]json.RawMessage{"mode": json.RawMessage(`"dock"`)},
		StyleCSS:    "#tray {}",
	}

	resp, err := f.svc.ImportLiveProfile(ctx, "Current Bar")
	require.NoError(t, err)
	assert.Equal(t, "current-bar", resp.Profile.ID)
	assert.Equal(t, "default", resp.ActiveProfileID)

	stored := f.stored(t, "current-bar")
	require.NotNil(t, stored)
	assert.Equal(t, []string{"tray"}, stored.Layout.Right)
	assert.Equal(t, "#tray {}", stored.StyleCSS)
	assert.JSONEq(t, `"dock"`, string(stored.Passthrough["mode"]))

	f.live.err = apperrors.NewFileReadError("/waybar/config.jsonc", errDiskFull)
	_, err = f.svc.ImportLiveProfile(ctx, "Other")
	assert.ErrorIs(t, err, apperrors.KindFileRead)
}

func TestWaybarConfigService_SyncStatus(t *testing.T) {
	f := newWaybarFixture(t)
	ctx := context.Background()

	status, err := f.svc.SyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.InSync)
	assert.Nil(t, status.SyncedAt)

	status, err = f.svc.SyncActive(ctx)
	require.NoError(t, err)
	assert.True(t, status.InSync)
	assert.Equal(t, "default", status.SyncedProfileID)

	_, err = f.svc.SaveStyle(ctx, "changed")
	require.NoError(t, err)
	status, err = f.svc.SyncStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.InSync, "save syncs the new revision")

	edited := f.stored(t, "default")
	edited.Revision = "edited-elsewhere"
	require.NoError(t, f.store.Put(ctx, edited))
	status, err = f.svc.SyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.InSync)
}

func TestWaybarConfigService_CanceledContext(t *testing.T) {
	f := newWaybarFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.svc.CreateProfile(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, apperrors.KindOf(err), "cancellation is not classified")
}

func TestWaybarConfigService_ImportWithoutLiveReader(t *testing.T) {
	svc := NewWaybarConfigService(memory.NewProfileStore(), staticTemplates{}, &recordingSyncer{}, discardLogger())

	_, err := svc.ImportLiveProfile(context.Background(), "Live")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindFileRead, apperrors.KindOf(err))
	assert.ErrorIs(t, err, ErrNoLiveConfigReader)
}
