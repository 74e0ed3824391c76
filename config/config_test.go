package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddr != ":3000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DefaultMaxResults != 50 {
		t.Errorf("DefaultMaxResults = %d", cfg.DefaultMaxResults)
	}
	if cfg.MaxConcurrentJobs != 2 {
		t.Errorf("MaxConcurrentJobs = %d", cfg.MaxConcurrentJobs)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive enabled without DB settings")
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \":8080\"\ndefault_max_results: 25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DEFAULT_MAX_RESULTS", "5")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "bizradar")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want the YAML value", cfg.ListenAddr)
	}
	if cfg.DefaultMaxResults != 5 {
		t.Errorf("DefaultMaxResults = %d, want the env override", cfg.DefaultMaxResults)
	}
	if !cfg.ArchiveEnabled() {
		t.Error("archive should be enabled with DB host and name set")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load succeeded on a missing config file")
	}
}
