package passes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// PipelineOptions tunes one end-to-end pipeline run. NewCaller, when set,
// replaces the OpenAI client factory; tests use it to stub the model.
type PipelineOptions struct {
	StartFrom         int
	Limit             int
	KeepIntermediates bool
	PromptsDir        string
	OntologiesDir     string
	APIKey            string
	StrictSchema      bool
	Logger            *slog.Logger

	NewCaller func(baseURL, apiKey, model string, temperature float64, maxTokens int) ChatCaller
}

// RunPipeline runs the four passes in order over the records in inPath and
// writes the fully annotated set to outPath. Each stage also persists its
// output as an intermediate file, so a crashed run can resume with StartFrom
// and the satisfaction gate skips whatever already completed.
func RunPipeline(ctx context.Context, cfg PipelineConfig, inPath, outPath string, opts PipelineOptions) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	defs := Definitions()
	if err := CheckFieldOwnership(defs); err != nil {
		return fmt.Errorf("RunPipeline: %w", err)
	}
	startFrom := opts.StartFrom
	if startFrom < 1 {
		startFrom = 1
	}
	if startFrom > len(defs) {
		return fmt.Errorf("RunPipeline: start stage %d out of range (1-%d)", startFrom, len(defs))
	}

	recs, err := LoadRecords(inPath, opts.Limit)
	if err != nil {
		return fmt.Errorf("RunPipeline: %w", err)
	}
	log.Info("pipeline start", "records", len(recs), "stages", len(defs), "start_from", startFrom)

	newCaller := opts.NewCaller
	if newCaller == nil {
		newCaller = func(baseURL, apiKey, model string, temperature float64, maxTokens int) ChatCaller {
			return NewOpenAIClient(baseURL, apiKey, model, temperature, maxTokens)
		}
	}

	outDir := filepath.Dir(outPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("RunPipeline: mkdir out dir: %w", err)
	}
	tmpDir, err := os.MkdirTemp(outDir, "stages_")
	if err != nil {
		return fmt.Errorf("RunPipeline: intermediate dir: %w", err)
	}
	if !opts.KeepIntermediates {
		defer os.RemoveAll(tmpDir)
	}

	for i, def := range defs {
		stage := i + 1
		if stage < startFrom {
			log.Info("stage skipped", "stage", stage, "pass", def.Name())
			continue
		}

		p := New(def, Settings{
			PromptsDir:    opts.PromptsDir,
			OntologiesDir: opts.OntologiesDir,
			Logger:        log,
		})
		model, temperature, maxTokens := cfg.ModelFor(def.Name())
		runner := &Runner{
			Caller:       newCaller(cfg.API.BaseURL, opts.APIKey, model, temperature, maxTokens),
			BatchSize:    cfg.Processing.BatchSize,
			StrictSchema: opts.StrictSchema,
			Logger:       log,
		}

		log.Info("stage start", "stage", stage, "pass", def.Name(), "model", model)
		recs = runner.Run(ctx, p, recs)

		stagePath := outPath
		if stage < len(defs) {
			stagePath = filepath.Join(tmpDir, fmt.Sprintf("stage%d_%s.jsonl", stage, def.Name()))
		}
		if err := SaveRecords(stagePath, recs); err != nil {
			return fmt.Errorf("RunPipeline: stage %d (%s): %w", stage, def.Name(), err)
		}
		log.Info("stage done", "stage", stage, "pass", def.Name(), "out", stagePath)

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("RunPipeline: %w", err)
		}
	}

	return nil
}
