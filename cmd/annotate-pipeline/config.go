package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
)

type Config struct {
	InPath     string
	OutPath    string
	ConfigPath string

	Limit     int
	StartFrom int

	PromptsDir    string
	OntologiesDir string

	APIKey            string
	StrictSchema      bool
	KeepIntermediates bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.Limit < 0 {
		return errors.New("limit must be >= 0")
	}
	if c.StartFrom < 1 || c.StartFrom > 4 {
		return errors.New("start-from must be between 1 and 4")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		StartFrom:     1,
		PromptsDir:    filepath.FromSlash("prompts"),
		OntologiesDir: filepath.FromSlash("ontologies"),
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", "", "Input JSONL file of records")
	fs.StringVar(&cfg.OutPath, "out", "", "Output JSONL file for fully annotated records")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML pipeline config (endpoint + per-pass models)")
	fs.IntVar(&cfg.Limit, "limit", 0, "Process only the first N records (0 = all)")
	fs.IntVar(&cfg.StartFrom, "start-from", cfg.StartFrom, "Resume at this stage (1=observer .. 4=critic)")
	fs.StringVar(&cfg.PromptsDir, "prompts-dir", cfg.PromptsDir, "Directory of pass prompt templates")
	fs.StringVar(&cfg.OntologiesDir, "ontologies-dir", cfg.OntologiesDir, "Directory of ontology JSON files")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (overrides OPENAI_API_KEY env var)")
	fs.BoolVar(&cfg.StrictSchema, "strict-schema", false, "Request schema-constrained structured output")
	fs.BoolVar(&cfg.KeepIntermediates, "keep-intermediates", false, "Keep per-stage intermediate JSONL files")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	if cfg.ConfigPath != "" {
		cfg.ConfigPath = filepath.Clean(cfg.ConfigPath)
	}
	cfg.PromptsDir = filepath.Clean(cfg.PromptsDir)
	cfg.OntologiesDir = filepath.Clean(cfg.OntologiesDir)
	return cfg, nil
}
