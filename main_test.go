package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "project_root: /tmp/proj\nweb:\n  port: 9999\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error = %v", err)
	}
	if cfg.ProjectRoot != "/tmp/proj" {
		t.Errorf("ProjectRoot = %q, want /tmp/proj", cfg.ProjectRoot)
	}
	if cfg.Web.Port != 9999 {
		t.Errorf("Web.Port = %d, want 9999", cfg.Web.Port)
	}
}

func TestLoadConfigDefaultLocationMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig error = %v", err)
	}
	if cfg.Web.Bind != "127.0.0.1" {
		t.Errorf("Web.Bind = %q, want default 127.0.0.1", cfg.Web.Bind)
	}
}
