package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
)

type Config struct {
	SourceRoot string
	TargetRoot string
}

func (c Config) Validate() error {
	if c.SourceRoot == "" {
		return errors.New("missing -source")
	}
	if c.TargetRoot == "" {
		return errors.New("missing -target")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		SourceRoot: filepath.FromSlash("../hh-rlhf"),
		TargetRoot: filepath.FromSlash("../NVC_HH"),
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.SourceRoot, "source", cfg.SourceRoot, "Root of the raw hh-rlhf corpus")
	fs.StringVar(&cfg.TargetRoot, "target", cfg.TargetRoot, "Root for the generated master JSONL files")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.SourceRoot = filepath.Clean(cfg.SourceRoot)
	cfg.TargetRoot = filepath.Clean(cfg.TargetRoot)
	return cfg, nil
}
