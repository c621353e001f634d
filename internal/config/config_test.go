package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateUserConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SCRIBE_API_BASE_URL", "")
	t.Setenv("SCRIBE_DB_PATH", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolateUserConfig(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.DBPath != "scribe.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("SCRIBE_API_BASE_URL", "http://env:9000")
	t.Setenv("SCRIBE_DB_PATH", "/tmp/env.db")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://env:9000" || cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("SCRIBE_API_BASE_URL", "http://env:9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: http://file:7000\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://file:7000" {
		t.Fatalf("file should win over env: %+v", cfg)
	}
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	isolateUserConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: http://file:7000\ndb_path: /tmp/file.db\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load([]string{"--config", path, "--api-base-url", "http://flag:6000"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://flag:6000" {
		t.Fatalf("flag should win over file: %+v", cfg)
	}
	if cfg.DBPath != "/tmp/file.db" {
		t.Fatalf("untouched file value should survive: %+v", cfg)
	}
}

func TestLoad_ExplicitMissingConfigFileFails(t *testing.T) {
	isolateUserConfig(t)

	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_RejectsTrailingSlash(t *testing.T) {
	isolateUserConfig(t)

	_, err := Load([]string{"--api-base-url", "http://localhost:8000/"})
	if err == nil {
		t.Fatal("expected validation error for trailing slash")
	}
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	isolateUserConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := Load([]string{"--config", path}); err == nil {
		t.Fatal("expected parse error")
	}
}
