package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Render.FPS != Default().Render.FPS {
		t.Errorf("Render.FPS = %d, want default", cfg.Render.FPS)
	}
	if cfg.Manifest.Prompt != DefaultPrompt {
		t.Error("missing file should keep the default prompt")
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = "127.0.0.1:9090"
data_dir = "/tmp/hanuman"

[camera]
device_id = 2
idle_timeout_ms = 500

[render]
fps = 30
seed = 42
rotation_follow = true

[manifest]
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Camera.DeviceID != 2 || cfg.Camera.IdleTimeout() != 500*time.Millisecond {
		t.Errorf("Camera = %+v", cfg.Camera)
	}
	if cfg.Camera.Width != 640 {
		t.Errorf("unset Camera.Width = %d, want default 640", cfg.Camera.Width)
	}
	if cfg.Render.FPS != 30 || cfg.Render.Seed != 42 || !cfg.Render.RotationFollow {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Manifest.Enabled {
		t.Error("Manifest.Enabled should be false")
	}
	if cfg.DatabasePath() != filepath.Join("/tmp/hanuman", "hanuman.db") {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "syntax", body: "[render\nfps = 1", want: "failed to parse"},
		{name: "unknown key", body: "[render]\nframes = 3", want: "unknown config key"},
		{name: "zero fps", body: "[render]\nfps = 0", want: "render.fps"},
		{name: "bad size", body: "[camera]\nwidth = -1", want: "camera size"},
		{name: "no plugin", body: "[manifest]\nplugin = \"\"", want: "manifest.plugin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Render.Seed = 7
	cfg.Audio.Enabled = false
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Render.Seed != 7 || loaded.Audio.Enabled {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	if !strings.HasSuffix(DefaultPath(), filepath.Join(".hanuman", "config.toml")) {
		t.Errorf("DefaultPath() = %q", DefaultPath())
	}
}
