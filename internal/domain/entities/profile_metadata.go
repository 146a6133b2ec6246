package entities

import (
	"sort"
	"time"

	"github.com/omarchist/omarchist/internal/domain/values"
)

// ProfileMetadata is the identity record of a stored profile, without content.
type ProfileMetadata struct {
	ID            values.ProfileID `yaml:"id"`
	Name          string           `yaml:"name"`
	FormatVersion string           `yaml:"format_version"`
	CreatedAt     time.Time        `yaml:"created_at"`
	UpdatedAt     time.Time        `yaml:"updated_at"`
	Revision      string           `yaml:"revision"`
}

// Metadata returns the profile's identity record.
func (p *WaybarProfile) Metadata() ProfileMetadata {
	return ProfileMetadata{
		ID:            p.ID,
		Name:          p.Name,
		FormatVersion: p.FormatVersion,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Revision:      p.Revision,
	}
}

// SortProfileMetadata orders entries by creation time, then by id.
func SortProfileMetadata(entries []ProfileMetadata) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.Less(b.ID)
	})
}
