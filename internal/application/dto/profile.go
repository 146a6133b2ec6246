// Package dto holds the request and response types of the application services.
package dto

import (
	"time"

	"github.com/omarchist/omarchist/internal/domain/entities"
)

// ProfileSummary is one entry of a profile listing.
type ProfileSummary struct {
	ID        string    `json:"id" yaml:"id" toml:"id"`
	Name      string    `json:"name" yaml:"name" toml:"name"`
	IsActive  bool      `json:"is_active" yaml:"is_active" toml:"is_active"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
}

// ProfileListResponse is returned by ListProfiles.
// Unreadable names stored profiles whose metadata could not be read.
type ProfileListResponse struct {
	Profiles        []ProfileSummary `json:"profiles" yaml:"profiles" toml:"profiles"`
	ActiveProfileID string           `json:"active_profile_id" yaml:"active_profile_id" toml:"active_profile_id"`
	Unreadable      []string         `json:"unreadable,omitempty" yaml:"unreadable,omitempty" toml:"unreadable,omitempty"`
}

// ProfileChangeResponse is returned by operations that create, select or delete a profile.
// Profile is the profile the operation acted on.
type ProfileChangeResponse struct {
	Profiles        []ProfileSummary `json:"profiles" yaml:"profiles" toml:"profiles"`
	ActiveProfileID string           `json:"active_profile_id" yaml:"active_profile_id" toml:"active_profile_id"`
	Profile         ProfileSummary   `json:"profile" yaml:"profile" toml:"profile"`
	Unreadable      []string         `json:"unreadable,omitempty" yaml:"unreadable,omitempty" toml:"unreadable,omitempty"`
}

// NewProfileSummary builds a listing entry from stored metadata.
func NewProfileSummary(meta entities.ProfileMetadata, activeID string) ProfileSummary {
	return ProfileSummary{
		ID:        meta.ID.String(),
		Name:      meta.Name,
		IsActive:  meta.ID.String() == activeID,
		CreatedAt: meta.CreatedAt,
	}
}
