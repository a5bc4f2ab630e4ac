package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("init-dataset", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-source", "corpus/hh-rlhf",
		"-target", "corpus/master",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.SourceRoot != "corpus/hh-rlhf" || cfg.TargetRoot != "corpus/master" {
		t.Fatalf("source=%q target=%q", cfg.SourceRoot, cfg.TargetRoot)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.SourceRoot == "" || cfg.TargetRoot == "" {
		t.Fatalf("defaults empty: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
