package cli

import (
	"path/filepath"
	"testing"
)

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "canopy") {
		t.Errorf("dir = %q", dir)
	}
}

func TestConfigPathRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	if path != filepath.Join("/tmp/xdg-config", "canopy", "config.toml") {
		t.Errorf("path = %q", path)
	}
}
