package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
)

type Config struct {
	PassName string
	InPath   string
	OutPath  string

	Model   string
	APIBase string
	APIKey  string

	Temperature float64
	MaxTokens   int

	Limit     int
	BatchSize int

	PromptsDir    string
	OntologiesDir string
	StrictSchema  bool
}

func (c Config) Validate() error {
	if c.PassName == "" {
		return errors.New("missing -pass")
	}
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Limit < 0 {
		return errors.New("limit must be >= 0")
	}
	if c.BatchSize < 0 {
		return errors.New("batch-size must be >= 0")
	}
	if c.MaxTokens <= 0 {
		return errors.New("max-tokens must be > 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Model:         "gpt-4o-mini",
		APIBase:       "http://localhost:8000/v1",
		Temperature:   0.2,
		MaxTokens:     2048,
		BatchSize:     64,
		PromptsDir:    filepath.FromSlash("prompts"),
		OntologiesDir: filepath.FromSlash("ontologies"),
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.PassName, "pass", "", "Pass to run: observer, empathizer, strategist, or critic")
	fs.StringVar(&cfg.InPath, "in", "", "Input JSONL file of records")
	fs.StringVar(&cfg.OutPath, "out", "", "Output JSONL file for updated records")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model ID sent to the chat-completions endpoint")
	fs.StringVar(&cfg.APIBase, "api-base", cfg.APIBase, "Base URL of the OpenAI-compatible endpoint")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (overrides OPENAI_API_KEY env var)")
	fs.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	fs.IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "Max completion tokens per call")
	fs.IntVar(&cfg.Limit, "limit", 0, "Process only the first N records (0 = all)")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Records per slice; also the number of in-flight calls (0 = default)")
	fs.StringVar(&cfg.PromptsDir, "prompts-dir", cfg.PromptsDir, "Directory of pass prompt templates")
	fs.StringVar(&cfg.OntologiesDir, "ontologies-dir", cfg.OntologiesDir, "Directory of ontology JSON files")
	fs.BoolVar(&cfg.StrictSchema, "strict-schema", false, "Request schema-constrained structured output")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	cfg.PromptsDir = filepath.Clean(cfg.PromptsDir)
	cfg.OntologiesDir = filepath.Clean(cfg.OntologiesDir)
	return cfg, nil
}
