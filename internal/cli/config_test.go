package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFileMissing(t *testing.T) {
	cfg, err := loadConfigFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("missing file should yield the zero config, got %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
node_width = 160.0
sibling_gap = 32.0
resolve = true

[serve]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if cfg.NodeWidth != 160 || cfg.SiblingGap != 32 || !cfg.Resolve {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Serve.Addr != ":9090" {
		t.Errorf("serve addr = %q", cfg.Serve.Addr)
	}

	opts := cfg.pipelineOptions()
	if opts.NodeWidth != 160 || !opts.Resolve {
		t.Errorf("pipeline options = %+v", opts)
	}
	// Unset fields stay zero so built-in defaults apply downstream.
	if opts.LevelGap != 0 {
		t.Errorf("level gap = %v, want 0 (unset)", opts.LevelGap)
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("node_width = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFile(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}
