package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voicekit/focusd/internal/focus"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}
	if cfg.Server.Port != "8085" {
		t.Errorf("Expected default port 8085, got %s", cfg.Server.Port)
	}
	if len(cfg.Channels.Audio) != 4 {
		t.Errorf("Expected 4 default audio channels, got %d", len(cfg.Channels.Audio))
	}
	if len(cfg.Channels.Visual) != 1 {
		t.Errorf("Expected 1 default visual channel, got %d", len(cfg.Channels.Visual))
	}
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusd.yaml")
	content := `server:
  port: "9090"
channels:
  audio:
    - name: Dialog
      priority: 10
    - name: Content
      priority: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected overridden port 9090, got %s", cfg.Server.Port)
	}
	// The file's audio table replaces the whole default table.
	if len(cfg.Channels.Audio) != 2 {
		t.Fatalf("Expected the file's 2 audio channels to replace the defaults, got %d", len(cfg.Channels.Audio))
	}
	if cfg.Channels.Audio[0].Name != "Dialog" || cfg.Channels.Audio[0].Priority != 10 {
		t.Errorf("Unexpected first channel: %+v", cfg.Channels.Audio[0])
	}
	// Unset sections keep their defaults.
	if len(cfg.Channels.Visual) != 1 {
		t.Errorf("Expected default visual table to survive, got %d channels", len(cfg.Channels.Visual))
	}
	if cfg.Activity.History != 100 {
		t.Errorf("Expected default activity history, got %d", cfg.Activity.History)
	}
}

func TestValidateRejectsDuplicatePriority(t *testing.T) {
	cfg := defaultConfig()
	cfg.Channels.Audio = []focus.ChannelConfig{
		{Name: "A", Priority: 1},
		{Name: "B", Priority: 1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for duplicate priority")
	}
	if !strings.Contains(err.Error(), "share priority") {
		t.Errorf("Expected a duplicate-priority message, got: %v", err)
	}
}

func TestValidateRejectsDuplicateName(t *testing.T) {
	cfg := defaultConfig()
	cfg.Channels.Visual = []focus.ChannelConfig{
		{Name: "Visual", Priority: 100},
		{Name: "Visual", Priority: 200},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for duplicate name")
	}
	if !strings.Contains(err.Error(), "duplicate channel name") {
		t.Errorf("Expected a duplicate-name message, got: %v", err)
	}
}

func TestWriteDefaultThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "focusd.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("Expected WriteDefault to refuse overwriting an existing file")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written defaults failed: %v", err)
	}
	if len(cfg.Channels.Audio) != 4 || cfg.Channels.Audio[0].Name != focus.DialogChannelName {
		t.Errorf("Written defaults did not round-trip: %+v", cfg.Channels.Audio)
	}
}
