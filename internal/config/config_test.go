package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/princespaghetti/sdmc/internal/sdmmc"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdmc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Backend != BackendSim {
		t.Errorf("Backend = %q, want %q", cfg.Storage.Backend, BackendSim)
	}
	if cfg.Storage.BusWidth != 4 {
		t.Errorf("BusWidth = %d, want 4", cfg.Storage.BusWidth)
	}
	if cfg.Storage.ClockKHz != 20000 {
		t.Errorf("ClockKHz = %d, want 20000", cfg.Storage.ClockKHz)
	}
	if cfg.Storage.MountRoot != "/sdcard" {
		t.Errorf("MountRoot = %q, want /sdcard", cfg.Storage.MountRoot)
	}
	if !cfg.Storage.PullUp {
		t.Error("PullUp should default to true")
	}
	if cfg.Storage.CLKLine != sdmmc.LineUnset {
		t.Errorf("CLKLine = %d, want unset", cfg.Storage.CLKLine)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "text" || cfg.Logger.Output != "stderr" {
		t.Errorf("logger defaults = %+v", cfg.Logger)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  clk_line: 43
  cmd_line: 44
  data0_line: 39
  bus_width: 1
logger:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Storage.CLKLine != 43 || cfg.Storage.CMDLine != 44 || cfg.Storage.Data0Line != 39 {
		t.Errorf("lines = %d/%d/%d, want 43/44/39",
			cfg.Storage.CLKLine, cfg.Storage.CMDLine, cfg.Storage.Data0Line)
	}
	if cfg.Storage.BusWidth != 1 {
		t.Errorf("BusWidth = %d, want 1", cfg.Storage.BusWidth)
	}

	// Absent keys keep their defaults.
	if cfg.Storage.ClockKHz != 20000 {
		t.Errorf("ClockKHz = %d, want the 20000 default", cfg.Storage.ClockKHz)
	}
	if cfg.Storage.Data1Line != sdmmc.LineUnset {
		t.Errorf("Data1Line = %d, want unset", cfg.Storage.Data1Line)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Logger.Output != "stderr" {
		t.Errorf("Output = %q, want the stderr default", cfg.Logger.Output)
	}
}

func TestLoad_GPIOZeroIsValid(t *testing.T) {
	// Line 0 is a real GPIO and must be distinguishable from "not set".
	path := writeConfig(t, `
storage:
  clk_line: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Storage.CLKLine != 0 {
		t.Errorf("CLKLine = %d, want 0", cfg.Storage.CLKLine)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "storage:\n  backend: nvme\n"},
		{"dir backend without backing_dir", "storage:\n  backend: dir\n"},
		{"non-positive capacity", "storage:\n  capacity_mb: 0\n"},
		{"malformed yaml", "storage: [not a map\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestStorageSettings(t *testing.T) {
	cfg := Default()
	cfg.Storage.CLKLine = 43
	cfg.Storage.CMDLine = 44
	cfg.Storage.Data0Line = 39
	cfg.Storage.BusWidth = 1
	cfg.Storage.MountRoot = "/media"
	cfg.Storage.PullUp = false

	s := cfg.StorageSettings()
	if s.CLKLine != 43 || s.CMDLine != 44 || s.Data0Line != 39 {
		t.Errorf("lines = %d/%d/%d, want 43/44/39", s.CLKLine, s.CMDLine, s.Data0Line)
	}
	if s.BusWidth != 1 {
		t.Errorf("BusWidth = %d, want 1", s.BusWidth)
	}
	if s.MountRoot != "/media" {
		t.Errorf("MountRoot = %q, want /media", s.MountRoot)
	}
	if s.PullUp {
		t.Error("PullUp should carry through as false")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("converted settings should validate: %v", err)
	}
}
