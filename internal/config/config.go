// Package config loads the Hanuman TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultModel is the image model asked for the manifestation.
const DefaultModel = "gemini-2.5-flash-image"

// DefaultPrompt describes the manifestation image.
const DefaultPrompt = "A spiritual manifestation of Lord Hanuman, entirely rendered as a dense cluster of glowing golden particles and shimmering stardust. The figure is made of millions of tiny luminous points of light, creating a transparent and ethereal silhouette. He is holding a Gada (mace) that is also dissolving into swirling fire particles. No solid skin or fabric, only a constellation of orange and saffron embers. Background is a dark deep-space void filled with a subtle cosmic nebula. Cinematic lighting, 8k, divine energy, magical particle physics style, high-resolution digital art."

// Config is the whole configuration file.
type Config struct {
	Server   Server   `toml:"server"`
	Camera   Camera   `toml:"camera"`
	Render   Render   `toml:"render"`
	Manifest Manifest `toml:"manifest"`
	Audio    Audio    `toml:"audio"`
	Tray     Tray     `toml:"tray"`
}

// Server configures the HTTP server.
type Server struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
	DataDir   string `toml:"data_dir"`
}

// Camera configures capture and the motion gate.
type Camera struct {
	Enabled         bool    `toml:"enabled"`
	DeviceID        int     `toml:"device_id"`
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	IdleFPS         int     `toml:"idle_fps"`
	ActiveFPS       int     `toml:"active_fps"`
	MotionThreshold float64 `toml:"motion_threshold"`
	IdleTimeoutMs   int     `toml:"idle_timeout_ms"`
}

// IdleTimeout returns the idle timeout as a duration.
func (c Camera) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMs) * time.Millisecond
}

// Render configures the frame loop.
type Render struct {
	FPS            int    `toml:"fps"`
	Seed           uint64 `toml:"seed"`
	RotationFollow bool   `toml:"rotation_follow"`
}

// Manifest configures image generation on the divine aura.
type Manifest struct {
	Enabled   bool   `toml:"enabled"`
	Plugin    string `toml:"plugin"`
	PluginDir string `toml:"plugin_dir"`
	Prompt    string `toml:"prompt"`
	Model     string `toml:"model"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// Timeout returns the plugin timeout as a duration.
func (m Manifest) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

// Audio configures the shape-change chime.
type Audio struct {
	Enabled bool `toml:"enabled"`
}

// Tray configures the system tray.
type Tray struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	home := homeDir()
	return Config{
		Server: Server{
			Addr:    ":8080",
			DataDir: filepath.Join(home, ".hanuman"),
		},
		Camera: Camera{
			Enabled:         true,
			Width:           640,
			Height:          480,
			IdleFPS:         5,
			ActiveFPS:       30,
			MotionThreshold: 1.0,
			IdleTimeoutMs:   2000,
		},
		Render: Render{
			FPS: 60,
		},
		Manifest: Manifest{
			Enabled:   true,
			Plugin:    "divine-image",
			PluginDir: filepath.Join(home, ".hanuman", "plugins"),
			Prompt:    DefaultPrompt,
			Model:     DefaultModel,
			TimeoutMs: 120000,
		},
		Audio: Audio{Enabled: true},
		Tray:  Tray{Enabled: false},
	}
}

// DefaultPath returns ~/.hanuman/config.toml.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".hanuman", "config.toml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Render.FPS <= 0:
		return fmt.Errorf("render.fps must be positive, got %d", c.Render.FPS)
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	case c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0:
		return fmt.Errorf("camera fps must be positive, got idle=%d active=%d", c.Camera.IdleFPS, c.Camera.ActiveFPS)
	case c.Camera.MotionThreshold <= 0:
		return fmt.Errorf("camera.motion_threshold must be positive, got %f", c.Camera.MotionThreshold)
	case c.Camera.IdleTimeoutMs < 0:
		return fmt.Errorf("camera.idle_timeout_ms must not be negative, got %d", c.Camera.IdleTimeoutMs)
	case c.Manifest.Enabled && c.Manifest.Plugin == "":
		return errors.New("manifest.plugin is required when manifest is enabled")
	case c.Manifest.TimeoutMs < 0:
		return fmt.Errorf("manifest.timeout_ms must not be negative, got %d", c.Manifest.TimeoutMs)
	}
	return nil
}

// DatabasePath returns the SQLite file inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.Server.DataDir, "hanuman.db")
}
