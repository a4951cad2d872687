package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPlugin_DivineImage_Manifest(t *testing.T) {
	dir := findPluginDir("divine-image")
	if dir == "" {
		t.Skip("divine-image plugin directory not found")
	}

	mgr := NewManager(filepath.Dir(dir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	p, err := mgr.Get("divine-image")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !p.Supports("generate") {
		t.Error("divine-image should support generate")
	}
}

func TestPlugin_DivineImage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	dir := findPluginDir("divine-image")
	if dir == "" {
		t.Skip("divine-image plugin directory not found")
	}
	if _, err := os.Stat(filepath.Join(dir, "divine-image")); err != nil {
		t.Skip("divine-image plugin not built")
	}

	mgr := NewManager(filepath.Dir(dir))
	mgr.Discover()
	p, err := mgr.Get("divine-image")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	resp, err := NewExecutor(2*time.Minute).Execute(context.Background(), p, &Request{
		Action: "generate",
		Shape:  "DIVINE_AURA",
		Params: json.RawMessage(`{"prompt":"a single golden particle of light"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := resp.Err(); err != nil {
		t.Fatalf("plugin error = %v", err)
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, "plugin.json")); err == nil {
			return dir
		}
	}
	return ""
}
