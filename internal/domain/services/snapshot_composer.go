// Package services contains stateless domain services.
package services

import (
	"time"

	"github.com/omarchist/omarchist/internal/domain/entities"
)

// SnapshotComposer converts between a profile's fragments and the flattened
// snapshot handed to callers. It holds no state.
type SnapshotComposer struct{}

// NewSnapshotComposer creates a new SnapshotComposer.
func NewSnapshotComposer() *SnapshotComposer {
	return &SnapshotComposer{}
}

// Compose assembles a snapshot from a profile. The result shares no memory
// with the profile.
func (c *SnapshotComposer) Compose(profile *entities.WaybarProfile) *entities.WaybarConfigSnapshot {
	clone := profile.Clone()
	clone.Normalize()

	return &entities.WaybarConfigSnapshot{
		ProfileID:   clone.ID.String(),
		ProfileName: clone.Name,
		WaybarConfigContent: entities.WaybarConfigContent{
			Layout:       clone.Layout,
			Modules:      clone.Modules,
			Globals:      clone.Globals,
			Passthrough:  clone.Passthrough,
			StyleCSS:     clone.StyleCSS,
			ModuleStyles: clone.ModuleStyles,
		},
	}
}

// Decompose applies content to a copy of base as a whole-document replace.
// Fields absent from content are cleared, not merged; identity and creation
// time are kept from base and UpdatedAt is set to now.
func (c *SnapshotComposer) Decompose(
	base *entities.WaybarProfile,
	content entities.WaybarConfigContent,
	now time.Time,
) *entities.WaybarProfile {
	incoming := &entities.WaybarProfile{
		Layout:       content.Layout,
		Modules:      content.Modules,
		Globals:      content.Globals,
		Passthrough:  content.Passthrough,
		StyleCSS:     content.StyleCSS,
		ModuleStyles: content.ModuleStyles,
	}

	out := base.Clone()
	out.ReplaceContent(incoming)
	out.UpdatedAt = now.UTC()
	out.Normalize()
	return out
}
