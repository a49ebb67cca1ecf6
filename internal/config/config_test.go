package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheRadius != DefaultCacheRadius || cfg.ProbeRadius != DefaultProbeRadius {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Patterns) != 0 {
		t.Errorf("unexpected patterns: %v", cfg.Patterns)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Patterns = []string{"/data/frame_####.png", "shot-#####.jpg"}
	cfg.CacheRadius = 25
	cfg.LogFile = "/tmp/seqview.log"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CacheRadius != 25 || got.LogFile != "/tmp/seqview.log" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Patterns) != 2 || got.Patterns[0] != "/data/frame_####.png" {
		t.Errorf("round trip lost patterns: %v", got.Patterns)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("patterns: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}

func TestLoadClampsBadRadii(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache_radius: -3\nprobe_radius: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheRadius != DefaultCacheRadius || cfg.ProbeRadius != DefaultProbeRadius {
		t.Errorf("bad radii not clamped: %+v", cfg)
	}
}

func TestAddPattern(t *testing.T) {
	cfg := Default()
	if !cfg.AddPattern("a-#.png") {
		t.Error("first AddPattern reported no change")
	}
	if cfg.AddPattern("a-#.png") {
		t.Error("duplicate AddPattern reported a change")
	}
	if !cfg.AddPattern("b-##.png") {
		t.Error("second distinct AddPattern reported no change")
	}
	if len(cfg.Patterns) != 2 {
		t.Errorf("patterns=%v", cfg.Patterns)
	}
}
