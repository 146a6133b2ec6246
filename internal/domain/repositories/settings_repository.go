// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"

	"github.com/omarchist/omarchist/internal/domain/entities"
)

// SettingsRepository persists the global application settings document.
type SettingsRepository interface {
	// Load returns the stored document, or the defaults when none is stored.
	Load(ctx context.Context) (entities.AppSettings, error)

	// Save atomically replaces the stored document.
	Save(ctx context.Context, settings entities.AppSettings) error
}
