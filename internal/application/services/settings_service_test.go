package services

import (
	"context"
	"testing"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_LoadDefaultsWhenAbsent(t *testing.T) {
	svc := NewSettingsService(memory.NewSettingsRepository(), discardLogger())

	got, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultAppSettings(), got)
}

func TestSettingsService_LoadPropagatesKind(t *testing.T) {
	repo := &failingSettingsRepo{
		SettingsRepository: memory.NewSettingsRepository(),
		loadErr:            apperrors.NewJSONParseError("settings.json", errDiskFull),
	}
	svc := NewSettingsService(repo, discardLogger())

	_, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindJSONParse, apperrors.KindOf(err))
	assert.Zero(t, repo.Saves(), "a bad document is never overwritten on load")
}

func TestSettingsService_UpdateRoundTrip(t *testing.T) {
	repo := memory.NewSettingsRepository()
	svc := NewSettingsService(repo, discardLogger())
	ctx := context.Background()

	doc := entities.DefaultAppSettings()
	doc.Theme = "Dark"
	doc.FontScale = 9
	doc.ShowWelcome = false

	validated, err := svc.Validate(doc)
	require.NoError(t, err)

	stored, err := svc.Update(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, validated, stored)

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, validated, loaded)
	assert.Equal(t, entities.ThemeDark, loaded.Theme)
	assert.Equal(t, entities.MaxFontScale, loaded.FontScale)
	assert.False(t, loaded.ShowWelcome)
}

func TestSettingsService_UpdateRejects(t *testing.T) {
	repo := memory.NewSettingsRepository()
	svc := NewSettingsService(repo, discardLogger())

	doc := entities.DefaultAppSettings()
	doc.AccentColor = "blue"
	doc.Language = "xx"

	_, err := svc.Update(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindValidation)

	verr, ok := err.(*apperrors.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "accent_color", verr.Field)
	assert.Len(t, verr.Details, 2)
	assert.Zero(t, repo.Saves())
}

func TestSettingsService_ResetIsIdempotent(t *testing.T) {
	repo := memory.NewSettingsRepository()
	svc := NewSettingsService(repo, discardLogger())
	ctx := context.Background()

	custom := entities.DefaultAppSettings()
	custom.Language = "ja"
	_, err := svc.Update(ctx, custom)
	require.NoError(t, err)

	first, err := svc.Reset(ctx)
	require.NoError(t, err)
	second, err := svc.Reset(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, entities.DefaultAppSettings(), second)

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultAppSettings(), loaded)
}
