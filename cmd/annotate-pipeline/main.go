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

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipelineCfg, err := passes.LoadPipelineConfig(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	err = passes.RunPipeline(ctx, pipelineCfg, cfg.InPath, cfg.OutPath, passes.PipelineOptions{
		StartFrom:         cfg.StartFrom,
		Limit:             cfg.Limit,
		KeepIntermediates: cfg.KeepIntermediates,
		PromptsDir:        cfg.PromptsDir,
		OntologiesDir:     cfg.OntologiesDir,
		APIKey:            apiKey,
		StrictSchema:      cfg.StrictSchema,
		Logger:            log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "in=%s out=%s start_from=%d\n", cfg.InPath, cfg.OutPath, cfg.StartFrom)
}
