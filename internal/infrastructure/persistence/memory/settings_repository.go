package memory

import (
	"context"
	"sync"

	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
)

var _ repositories.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository is an in-memory implementation of repositories.SettingsRepository.
type SettingsRepository struct {
	stored *entities.AppSettings
	saves  int
	mu     sync.RWMutex
}

// NewSettingsRepository creates an empty repository; Load returns the defaults until Save.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Load returns the stored document or the defaults.
func (r *SettingsRepository) Load(_ context.Context) (entities.AppSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stored == nil {
		return entities.DefaultAppSettings(), nil
	}
	return *r.stored, nil
}

// Save replaces the stored document.
func (r *SettingsRepository) Save(_ context.Context, settings entities.AppSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stored = &settings
	r.saves++
	return nil
}

// Saves returns how many times Save was called.
func (r *SettingsRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
