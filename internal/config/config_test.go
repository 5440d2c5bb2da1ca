package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
theme: dark
word_wrap: 80
show_reasoning: true
sessions_dir: /tmp/sessions
tools:
  hide_indicator:
    - bash
    - read_file
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	if cfg.Theme != "dark" || cfg.WordWrap != 80 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.ShowReasoning {
		t.Fatal("show_reasoning not read")
	}
	if len(cfg.Tools.HideIndicator) != 2 || cfg.Tools.HideIndicator[0] != "bash" {
		t.Fatalf("unexpected hide_indicator: %v", cfg.Tools.HideIndicator)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("tools: [not: valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadFileNegativeWrap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("word_wrap: -5"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for negative word_wrap")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CHATVIEW_CONFIG", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	t.Setenv("CHATVIEW_SESSIONS_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	def := Default()
	if cfg.Theme != def.Theme || cfg.WordWrap != def.WordWrap {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEnvOverridesSessionsDir(t *testing.T) {
	t.Setenv("CHATVIEW_CONFIG", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	t.Setenv("CHATVIEW_SESSIONS_DIR", "/srv/transcripts")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SessionsDir != "/srv/transcripts" {
		t.Fatalf("env override not applied: %q", cfg.SessionsDir)
	}
	if cfg.DefaultSessionsDir() != "/srv/transcripts" {
		t.Fatalf("DefaultSessionsDir should prefer configured dir")
	}
}
