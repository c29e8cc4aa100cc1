package config

import (
	"os"
	"path/filepath"
	"testing"

	"mysteryweb/internal/layout"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\nsource:\n  kind: markdown\n  paths: [./mystery]\n  exclude: [./mystery/drafts]\nlayout:\n  algorithm: force\n  direction: tb\n  force:\n    iterations: 120\nbuild:\n  max_depth: 4\n  max_nodes: 100\nlog:\n  debug: true\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "manor" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Source.Kind != "markdown" || len(cfg.Source.Exclude) != 1 {
			t.Fatalf("unexpected source: %#v", cfg.Source)
		}
		if cfg.Layout.Force.Iterations != 120 {
			t.Fatalf("expected force iterations 120, got %d", cfg.Layout.Force.Iterations)
		}
		if !cfg.IntegrityEnabled() {
			t.Fatalf("expected integrity on by default")
		}
		if !cfg.Log.Debug {
			t.Fatalf("expected debug")
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Source.Kind != "file" || cfg.Source.Path != "dataset.yaml" {
			t.Fatalf("unexpected source defaults: %#v", cfg.Source)
		}
		if cfg.Layout.Direction != "LR" {
			t.Fatalf("expected LR default, got %q", cfg.Layout.Direction)
		}
	})

	t.Run("integrity disabled", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\nbuild:\n  integrity: false\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.IntegrityEnabled() {
			t.Fatalf("expected integrity disabled")
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 2\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown source kind", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\nsource:\n  kind: neo4j\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv(EnvDSN, "")
		path := writeTempConfig(t, "project: manor\nversion: 1\nsource:\n  kind: postgres\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("postgres dsn from env", func(t *testing.T) {
		t.Setenv(EnvDSN, "postgres://localhost/mystery")
		path := writeTempConfig(t, "project: manor\nversion: 1\nsource:\n  kind: postgres\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Source.DSN != "postgres://localhost/mystery" {
			t.Fatalf("expected dsn from env, got %q", cfg.Source.DSN)
		}
	})

	t.Run("unknown layout algorithm", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\nlayout:\n  algorithm: circle\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("bad direction", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\nlayout:\n  direction: diagonal\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("negative limits", func(t *testing.T) {
		path := writeTempConfig(t, "project: manor\nversion: 1\nbuild:\n  max_nodes: -1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Project != "mysteryweb" {
		t.Fatalf("expected default project, got %q", cfg.Project)
	}

	path := writeTempConfig(t, "project: [\n")
	if _, err := LoadOrDefault(path); err == nil {
		t.Fatalf("expected parse error to surface")
	}
}

func TestApplyEnvDebug(t *testing.T) {
	t.Setenv(EnvDebug, "true")
	cfg := Default()
	cfg.ApplyEnv()
	if !cfg.Log.Debug {
		t.Fatalf("expected debug from env")
	}

	t.Setenv(EnvDebug, "not-a-bool")
	cfg = Default()
	cfg.ApplyEnv()
	if cfg.Log.Debug {
		t.Fatalf("expected invalid bool to be ignored")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MYSTERYWEB_TEST_FROM_ENV_FILE=yes\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MYSTERYWEB_TEST_FROM_ENV_FILE") })

	if err := LoadEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("MYSTERYWEB_TEST_FROM_ENV_FILE"); got != "yes" {
		t.Fatalf("expected env var from file, got %q", got)
	}

	if err := LoadEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

func TestLayoutFor(t *testing.T) {
	cfg := Default()
	cfg.Layout.Algorithm = "hierarchical"
	cfg.Layout.Direction = "tb"
	lc, err := cfg.LayoutFor()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lc.Algorithm != layout.PureDagre {
		t.Fatalf("expected pure-dagre, got %q", lc.Algorithm)
	}
	if lc.Direction != layout.TopBottom {
		t.Fatalf("expected TB, got %q", lc.Direction)
	}

	cfg.Layout.Algorithm = ""
	lc, err = cfg.LayoutFor()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lc.Algorithm != "" {
		t.Fatalf("expected empty algorithm, got %q", lc.Algorithm)
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
