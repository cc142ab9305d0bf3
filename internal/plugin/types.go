// Package plugin runs external input-injection executables discovered from
// plugin.json manifests.
package plugin

import "encoding/json"

// Actions an injector plugin is expected to implement.
const (
	ActionKeyDown   = "key_down"
	ActionKeyUp     = "key_up"
	ActionMouseDown = "mouse_down"
	ActionMouseUp   = "mouse_up"
)

// Manifest describes a plugin's metadata and the actions it supports.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// SupportsAll reports whether the manifest lists every action.
func (m Manifest) SupportsAll(actions ...string) bool {
	for _, a := range actions {
		if !m.Supports(a) {
			return false
		}
	}
	return true
}

// Request is written to the plugin's stdin as JSON.
type Request struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Params Params `json:"params"`
}

// Params carries the input to press or release.
type Params struct {
	Key    string `json:"key,omitempty"`
	Button string `json:"button,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
