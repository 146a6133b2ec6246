package entities

import "encoding/json"

// WaybarConfigContent is the replaceable part of a profile: everything the
// caller may edit in one whole-document save.
type WaybarConfigContent struct {
	Layout       WaybarLayout               `json:"layout"`
	Modules      map[string]json.RawMessage `json:"modules"`
	Globals      WaybarGlobals              `json:"globals"`
	Passthrough  map[string]json.RawMessage `json:"passthrough"`
	StyleCSS     string                     `json:"style_css"`
	ModuleStyles map[string]string          `json:"module_styles"`
}

// WaybarConfigSnapshot is the caller-facing composition of the active
// profile's fragments. It is derived on every read and never persisted.
type WaybarConfigSnapshot struct {
	ProfileID   string `json:"profile_id"`
	ProfileName string `json:"profile_name"`
	WaybarConfigContent
}
