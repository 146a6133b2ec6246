package repositories

import (
	"context"

	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/values"
)

// ProfileStore owns the set of stored Waybar profiles and the active pointer.
// Every write replaces whole documents; a reader never observes a partial profile.
type ProfileStore interface {
	// List returns the metadata of every readable profile, oldest first.
	// A profile whose metadata cannot be read is left out rather than failing
	// the whole listing.
	List(ctx context.Context) ([]entities.ProfileMetadata, error)

	// IDs returns the id of every stored profile in ascending order, including
	// profiles whose contents cannot be read.
	IDs(ctx context.Context) ([]values.ProfileID, error)

	// Get loads one profile with all of its fragments.
	// Returns a not_found error when the profile does not exist.
	Get(ctx context.Context, id values.ProfileID) (*entities.WaybarProfile, error)

	// Exists reports whether a profile with the given id is stored.
	Exists(ctx context.Context, id values.ProfileID) (bool, error)

	// Put creates or replaces a profile.
	Put(ctx context.Context, profile *entities.WaybarProfile) error

	// Delete removes a profile. Returns a not_found error when it does not exist.
	Delete(ctx context.Context, id values.ProfileID) error

	// ActiveID returns the active pointer, or the zero ID when it is unset.
	ActiveID(ctx context.Context) (values.ProfileID, error)

	// SetActive persists the active pointer.
	SetActive(ctx context.Context, id values.ProfileID) error
}
