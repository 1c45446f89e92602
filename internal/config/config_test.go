package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DataDir != "data" || c.DefaultView != "country" || c.DefaultEntity != "USA" {
		t.Fatalf("defaults = %+v", c)
	}
	if c.ConstantFallback != 0.5 || c.OutputFormat != "md" || c.ChartWidth != 960 || c.ChartHeight != 540 {
		t.Fatalf("defaults = %+v", c)
	}
	if c.LogLevel != "warn" || c.LogFormat != "text" || c.StrictSchema {
		t.Fatalf("logging defaults = %+v", c)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.DataDir = "/srv/climate"
	c.StrictSchema = true
	c.ConstantFallback = 0
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".trendloom", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.DataDir != "/srv/climate" || !got.StrictSchema || got.ConstantFallback != 0 {
		t.Fatalf("reloaded = %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("default_entity: FRA\ndata_dir: /tmp/a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRENDLOOM_DATA_DIR", "/tmp/b")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultEntity != "FRA" {
		t.Fatalf("file value ignored: %q", c.DefaultEntity)
	}
	if c.DataDir != "/tmp/b" {
		t.Fatalf("env should override file: %q", c.DataDir)
	}
}

func TestLoadRejectsFallbackOutOfRange(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRENDLOOM_CONSTANT_FALLBACK", "1.5")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for constant_fallback 1.5")
	}
}

func TestDefaultsMatchLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d := Defaults(); *d != *loaded {
		t.Fatalf("Defaults() = %+v, Load() = %+v", d, loaded)
	}
}
