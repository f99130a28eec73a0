package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileIsEmpty(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.Server.URL != nil || cfg.Study.Count != nil || cfg.Stats.Last != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "https://study.example.com"

[study]
count = 8
kind = "truefalse"

[stats]
days = 30
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.URL == nil || *cfg.Server.URL != "https://study.example.com" {
		t.Fatalf("unexpected server url: %v", cfg.Server.URL)
	}
	if cfg.Study.Count == nil || *cfg.Study.Count != 8 {
		t.Fatalf("unexpected count: %v", cfg.Study.Count)
	}
	if cfg.Study.Kind == nil || *cfg.Study.Kind != "truefalse" {
		t.Fatalf("unexpected kind: %v", cfg.Study.Kind)
	}
	if cfg.Study.Difficulty != nil {
		t.Fatalf("unset difficulty must stay nil")
	}
	if cfg.Stats.Days == nil || *cfg.Stats.Days != 30 {
		t.Fatalf("unexpected days: %v", cfg.Stats.Days)
	}
	if cfg.Stats.Last != nil {
		t.Fatalf("unset last must stay nil")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "identity")

	email, err := LoadIdentity(path)
	if err != nil || email != "" {
		t.Fatalf("missing identity must yield empty: %q %v", email, err)
	}

	if err := SaveIdentity(path, "alex@example.com"); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	email, err = LoadIdentity(path)
	if err != nil || email != "alex@example.com" {
		t.Fatalf("unexpected identity: %q %v", email, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat identity: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("identity must be user-only, got %v", info.Mode().Perm())
	}

	if err := ClearIdentity(path); err != nil {
		t.Fatalf("clear identity: %v", err)
	}
	if err := ClearIdentity(path); err != nil {
		t.Fatalf("clearing twice must be fine: %v", err)
	}
	email, err = LoadIdentity(path)
	if err != nil || email != "" {
		t.Fatalf("cleared identity must be empty: %q %v", email, err)
	}
}
