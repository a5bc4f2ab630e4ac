package passes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelParameters are the optional per-pass sampling overrides. Nil pointers
// mean "use the pipeline default", so a config file can set just one knob.
type ModelParameters struct {
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

// ModelConfig selects the model one pass talks to.
type ModelConfig struct {
	ModelID    string          `yaml:"model_id"`
	Parameters ModelParameters `yaml:"parameters"`
}

// PipelineConfig mirrors the pipeline YAML file: one API endpoint, one model
// block per pass keyed by pass name, and processing knobs shared by all
// passes.
type PipelineConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Models     map[string]ModelConfig `yaml:"models"`
	Processing struct {
		BatchSize int `yaml:"batch_size"`
	} `yaml:"processing"`
}

const (
	defaultModelID     = "gpt-4o-mini"
	defaultBaseURL     = "http://localhost:8000/v1"
	defaultTemperature = 0.2
	defaultMaxTokens   = 2048
)

// DefaultPipelineConfig returns the config used when no file is given:
// a local OpenAI-compatible endpoint and one shared model for all passes.
func DefaultPipelineConfig() PipelineConfig {
	var cfg PipelineConfig
	cfg.API.BaseURL = defaultBaseURL
	cfg.Models = map[string]ModelConfig{}
	cfg.Processing.BatchSize = DefaultBatchSize
	return cfg
}

// LoadPipelineConfig reads a YAML pipeline config. A missing file is not an
// error; the defaults apply. Unset fields fall back to defaults too, so a
// partial file only overrides what it names.
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("LoadPipelineConfig: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("LoadPipelineConfig: parse %s: %w", path, err)
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURL
	}
	if cfg.Models == nil {
		cfg.Models = map[string]ModelConfig{}
	}
	if cfg.Processing.BatchSize <= 0 {
		cfg.Processing.BatchSize = DefaultBatchSize
	}
	return cfg, nil
}

// ModelFor resolves the model block for a pass, filling unset knobs with the
// pipeline defaults.
func (c PipelineConfig) ModelFor(passName string) (modelID string, temperature float64, maxTokens int) {
	modelID = defaultModelID
	temperature = defaultTemperature
	maxTokens = defaultMaxTokens

	mc, ok := c.Models[passName]
	if !ok {
		return modelID, temperature, maxTokens
	}
	if mc.ModelID != "" {
		modelID = mc.ModelID
	}
	if mc.Parameters.Temperature != nil {
		temperature = *mc.Parameters.Temperature
	}
	if mc.Parameters.MaxTokens != nil {
		maxTokens = *mc.Parameters.MaxTokens
	}
	return modelID, temperature, maxTokens
}
