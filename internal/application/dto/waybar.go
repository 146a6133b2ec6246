package dto

import (
	"encoding/json"
	"time"

	"github.com/omarchist/omarchist/internal/domain/entities"
)

// SaveWaybarConfigPayload is a whole-document replacement of the active
// profile's content. Omitted fields are stored empty; fields are never merged.
// profile_id and profile_name, as printed by a snapshot, are accepted and ignored.
type SaveWaybarConfigPayload struct {
	Layout       entities.WaybarLayout      `json:"layout"`
	Modules      map[string]json.RawMessage `json:"modules"`
	Globals      entities.WaybarGlobals     `json:"globals"`
	Passthrough  map[string]json.RawMessage `json:"passthrough"`
	StyleCSS     string                     `json:"style_css"`
	ModuleStyles map[string]string          `json:"module_styles"`
}

// Content converts the payload to domain content.
func (p SaveWaybarConfigPayload) Content() entities.WaybarConfigContent {
	return entities.WaybarConfigContent{
		Layout:       p.Layout,
		Modules:      p.Modules,
		Globals:      p.Globals,
		Passthrough:  p.Passthrough,
		StyleCSS:     p.StyleCSS,
		ModuleStyles: p.ModuleStyles,
	}
}

// PayloadFromSnapshot copies every content field of a snapshot into a payload.
func PayloadFromSnapshot(snap *entities.WaybarConfigSnapshot) SaveWaybarConfigPayload {
	return SaveWaybarConfigPayload{
		Layout:       snap.Layout,
		Modules:      snap.Modules,
		Globals:      snap.Globals,
		Passthrough:  snap.Passthrough,
		StyleCSS:     snap.StyleCSS,
		ModuleStyles: snap.ModuleStyles,
	}
}

// StyleResponse is returned by GetStyle and SaveStyle.
type StyleResponse struct {
	ProfileID string `json:"profile_id" yaml:"profile_id" toml:"profile_id"`
	StyleCSS  string `json:"style_css" yaml:"style_css" toml:"style_css"`
}

// SyncStatusResponse compares the active profile with the last Live Sync.
type SyncStatusResponse struct {
	ActiveProfileID string     `json:"active_profile_id" yaml:"active_profile_id" toml:"active_profile_id"`
	ActiveRevision  string     `json:"active_revision" yaml:"active_revision" toml:"active_revision"`
	SyncedProfileID string     `json:"synced_profile_id,omitempty" yaml:"synced_profile_id,omitempty" toml:"synced_profile_id,omitempty"`
	SyncedRevision  string     `json:"synced_revision,omitempty" yaml:"synced_revision,omitempty" toml:"synced_revision,omitempty"`
	SyncedAt        *time.Time `json:"synced_at,omitempty" yaml:"synced_at,omitempty" toml:"synced_at,omitempty"`
	InSync          bool       `json:"in_sync" yaml:"in_sync" toml:"in_sync"`
}
