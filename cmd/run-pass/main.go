package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/theimaginaryfoundation/annotate-o-tron/passes"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	def, ok := passes.DefinitionByName(cfg.PassName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown pass: %s\n", cfg.PassName)
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recs, err := passes.LoadRecords(cfg.InPath, cfg.Limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no records found in -in")
		os.Exit(1)
	}

	p := passes.New(def, passes.Settings{
		PromptsDir:    cfg.PromptsDir,
		OntologiesDir: cfg.OntologiesDir,
		Logger:        log,
	})
	runner := &passes.Runner{
		Caller:       passes.NewOpenAIClient(cfg.APIBase, apiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens),
		BatchSize:    cfg.BatchSize,
		StrictSchema: cfg.StrictSchema,
		Logger:       log,
	}

	recs = runner.Run(ctx, p, recs)

	if err := passes.SaveRecords(cfg.OutPath, recs); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "pass=%s records=%d out=%s\n", def.Name(), len(recs), cfg.OutPath)
}
