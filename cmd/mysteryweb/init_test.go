package main

import (
	"context"
	"testing"

	"mysteryweb/internal/config"
	"mysteryweb/internal/source"
	"mysteryweb/internal/validate"
)

func TestRunInit(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := runInit("manor"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.LoadProjectConfig(config.DefaultPath)
	if err != nil {
		t.Fatalf("expected scaffolded config to load, got %v", err)
	}
	if cfg.Project != "manor" || cfg.Source.Path != sampleDatasetPath {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	data, err := source.NewFile(cfg.Source.Path).Load(context.Background())
	if err != nil {
		t.Fatalf("expected sample dataset to load, got %v", err)
	}
	if data.Len() != 7 {
		t.Fatalf("expected 7 entities, got %d", data.Len())
	}

	report, err := validate.Run(context.Background(), data, validate.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("expected a clean sample dataset, got %#v", report.Issues)
	}

	if err := runInit("manor"); err == nil {
		t.Fatalf("expected error when files already exist")
	}
}
