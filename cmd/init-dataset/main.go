package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/theimaginaryfoundation/annotate-o-tron/dataset"
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

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := dataset.InitTree(cfg.SourceRoot, cfg.TargetRoot, log); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "source=%s target=%s\n", cfg.SourceRoot, cfg.TargetRoot)
}
