// Command stillcap is the CLI entrypoint for the Stillcap title-card and
// screenshot tool.
//
// It layers configuration (defaults, optional YAML file, flags), validates
// it, and runs either system diagnostics (--check), the probe-only report
// (--analyze), or the batch pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/stillcap/internal/check"
	"github.com/backmassage/stillcap/internal/config"
	"github.com/backmassage/stillcap/internal/display"
	"github.com/backmassage/stillcap/internal/logging"
	"github.com/backmassage/stillcap/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build", these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()

	// The config file loads between defaults and flags so flags win.
	if path := config.FilePath(os.Args[1:]); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "stillcap: %v\n", err)
			return 1
		}
	}

	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		fmt.Fprintf(os.Stderr, "stillcap: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "stillcap: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stillcap: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	if cfg.AnalyzeOnly {
		if _, err := absPath(cfg.InputDir); err != nil {
			log.Error("Input not found: %s", cfg.InputDir)
			return 1
		}
		pipeline.Analyze(ctx, &cfg, log)
		return 0
	}

	// Resolve and validate paths: input must exist, output is created if
	// needed, and output must not be inside input (prevents discovering our
	// own screenshots).
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return 1
	}

	log.Info("=== Stillcap v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN, no files will be written")
	}
	log.Info("")

	// Fail fast if ffmpeg/ffprobe or the fonts are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	stats := pipeline.Run(ctx, &cfg, log)

	// Partial output is a success with warnings; only files that produced
	// nothing fail the run.
	if stats.Failed > 0 {
		return 1
	}
	return 0
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so the
// pipeline can stop between files without leaving partial output.
func signalContext(log *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current file...")
		cancel()
	}()
	return ctx, cancel
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
