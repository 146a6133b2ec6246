// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"time"

	"github.com/omarchist/omarchist/internal/domain/entities"
)

// LiveSyncState describes the last successful Live Sync, as recorded next to
// the live Waybar files.
type LiveSyncState struct {
	ProfileID string    `yaml:"profile_id"`
	Revision  string    `yaml:"revision"`
	SyncedAt  time.Time `yaml:"synced_at"`
}

// LiveSyncer mirrors the active profile into the files Waybar reads.
type LiveSyncer interface {
	// Sync renders the profile and atomically replaces each live file.
	// Calling it again with the same profile is a no-op in effect.
	Sync(ctx context.Context, profile *entities.WaybarProfile) error

	// State returns the marker of the last sync, or nil when none was recorded.
	State(ctx context.Context) (*LiveSyncState, error)
}

// LiveConfigReader reads the Waybar configuration currently on disk.
type LiveConfigReader interface {
	// ReadLive parses the live config and stylesheet into profile content.
	// Identity fields of the returned profile are left empty.
	ReadLive(ctx context.Context) (*entities.WaybarProfile, error)
}

// TemplateProvider supplies the bundled default Waybar configuration.
type TemplateProvider interface {
	// DefaultProfile returns a fresh copy of the bundled template content.
	DefaultProfile() (*entities.WaybarProfile, error)
}
