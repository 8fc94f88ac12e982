package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Render.Exclude != nil {
		t.Fatalf("expected unset exclude, got %q", *cfg.Render.Exclude)
	}
}

func TestLoadConfigDecodesRenderSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[render]
exclude = "C"
positions = "28-35"
duplicates = "first"
tick-every = 5
open = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Render.Exclude == nil || *cfg.Render.Exclude != "C" {
		t.Fatalf("unexpected exclude: %v", cfg.Render.Exclude)
	}
	if cfg.Render.Positions == nil || *cfg.Render.Positions != "28-35" {
		t.Fatalf("unexpected positions: %v", cfg.Render.Positions)
	}
	if cfg.Render.TickEvery == nil || *cfg.Render.TickEvery != 5 {
		t.Fatalf("unexpected tick-every: %v", cfg.Render.TickEvery)
	}
	if cfg.Render.Open == nil || !*cfg.Render.Open {
		t.Fatalf("expected open = true")
	}
	if cfg.Render.Width != nil {
		t.Fatalf("expected width unset")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[render]\ncolour = \"red\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	got := DefaultOutputPath("/work", "data/1CSE.csv")
	want := filepath.Join("/work", "1CSE_mutation_ddG_heatmap.html")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if title := DefaultTitle("1CSE.csv"); title != "Protein Mutation ΔΔG Predictions (1CSE)" {
		t.Fatalf("unexpected title %q", title)
	}
}
