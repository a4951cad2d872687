// Package plugin discovers and runs out-of-process plugins that speak JSON
// over stdin and stdout.
package plugin

import (
	"encoding/json"
	"errors"
	"slices"
)

// Manifest is the contents of a plugin's plugin.json.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Request is written to the plugin's stdin.
type Request struct {
	Action string          `json:"action"`
	Shape  string          `json:"shape,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrPluginFailed wraps the error message a plugin reports.
var ErrPluginFailed = errors.New("plugin reported failure")

// Err returns nil on success, or the plugin's own error wrapped in
// ErrPluginFailed.
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = "no error message"
	}
	return errors.Join(ErrPluginFailed, errors.New(msg))
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
