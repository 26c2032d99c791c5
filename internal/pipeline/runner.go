// Package pipeline orchestrates file discovery, per-file processing, and
// batch summary reporting. Each file runs two independent half-pipelines,
// title card and screenshots; failure of one never aborts the other.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/stillcap/internal/config"
	"github.com/backmassage/stillcap/internal/display"
	"github.com/backmassage/stillcap/internal/extract"
	"github.com/backmassage/stillcap/internal/fonts"
	"github.com/backmassage/stillcap/internal/logging"
	"github.com/backmassage/stillcap/internal/probe"
	"github.com/backmassage/stillcap/internal/render"
	"github.com/backmassage/stillcap/internal/schedule"
	"github.com/backmassage/stillcap/internal/title"
)

const minFileSize = 1000

// outcome classifies one half-pipeline's result for a single file.
type outcome int

const (
	outcomeDisabled outcome = iota
	outcomeOK
	outcomePartial
	outcomeFailed
)

// titlePipeline bundles the per-run title collaborators: tokenizer, grammar
// checker, and the resolved font. When font resolution fails the title half
// is disabled for the whole batch rather than failing per file.
type titlePipeline struct {
	card    bool
	overlay bool
	font    fonts.Descriptor
	tok     *title.Tokenizer
	chk     *title.Checker
}

func newTitlePipeline(cfg *config.Config, log *logging.Logger) *titlePipeline {
	abbrevs := title.DefaultAbbreviations
	if len(cfg.Abbreviations) > 0 {
		merged := make(map[string]string, len(abbrevs)+len(cfg.Abbreviations))
		for k, v := range abbrevs {
			merged[k] = v
		}
		for k, v := range cfg.Abbreviations {
			merged[k] = v
		}
		abbrevs = merged
	}
	smallWords := title.DefaultSmallWords
	if len(cfg.SmallWords) > 0 {
		smallWords = cfg.SmallWords
	}

	tp := &titlePipeline{
		tok: title.NewTokenizer(abbrevs),
		chk: title.NewChecker(smallWords),
	}
	if !cfg.MakeTitleCard && !cfg.OverlayTitles {
		return tp
	}

	list, err := fonts.Scan(cfg.FontsDir)
	if err == nil {
		tp.font, err = fonts.Select(list, cfg.FontName)
	}
	if err != nil {
		log.Warn("Title output disabled: %v", err)
		return tp
	}
	tp.card = cfg.MakeTitleCard
	tp.overlay = cfg.OverlayTitles
	return tp
}

func (tp *titlePipeline) wanted() bool { return tp.card || tp.overlay }

// Run is the top-level batch entry point. It discovers files, resolves the
// font once, processes each file sequentially, and returns aggregate stats.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, err := Discover(cfg.InputDir)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats
	}
	stats.Total = len(files)
	if stats.Total == 0 {
		log.Warn("No video files found in %s", cfg.InputDir)
		return stats
	}

	titles := newTitlePipeline(cfg, log)

	workDir, err := os.MkdirTemp("", "stillcap-probe-")
	if err != nil {
		log.Error("Cannot create work directory: %v", err)
		return stats
	}
	defer os.RemoveAll(workDir)

	logBatchHeader(cfg, log, &stats, titles)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		processFile(ctx, cfg, log, path, &stats, titles, workDir)
	}

	logSummary(cfg, log, &stats)
	return stats
}

// processFile handles one video: validate, probe, then the two
// half-pipelines, and folds their outcomes into the batch counters.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	path string,
	stats *RunStats,
	titles *titlePipeline,
	workDir string,
) {
	basename := filepath.Base(path)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	fi, err := os.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.Failed++
		fmt.Println()
		return
	}
	if fi.Size() < minFileSize {
		log.Error("File too small (possibly corrupt): %s", path)
		stats.Failed++
		fmt.Println()
		return
	}

	pr, err := probeFile(ctx, cfg, path)
	if err != nil {
		log.Error("Cannot probe file (possibly corrupt): %v", err)
		stats.Failed++
		fmt.Println()
		return
	}
	if pr.PrimaryVideo == nil {
		log.Warn("No video stream found, skipping")
		stats.Skipped++
		fmt.Println()
		return
	}

	duration := pr.Duration()
	log.Debug(cfg.Verbose, "  %s | %s", display.FormatDuration(duration), pr.Resolution())

	stem := strings.TrimSuffix(basename, filepath.Ext(basename))
	outDir := filepath.Join(cfg.OutputDir, stem)
	if !cfg.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Error("Cannot create output directory: %v", err)
			stats.Failed++
			fmt.Println()
			return
		}
	}

	titleRes, req := runTitle(cfg, log, titles, stem, outDir, stats)
	shotRes := runScreenshots(ctx, cfg, log, path, duration, outDir, titles, req, stats, workDir)

	switch {
	case titleRes == outcomeFailed && shotRes == outcomeFailed:
		stats.Failed++
	case titleRes == outcomeFailed || shotRes == outcomeFailed ||
		titleRes == outcomePartial || shotRes == outcomePartial:
		stats.Partial++
	default:
		stats.Completed++
	}
	fmt.Println()
}

// probeFile runs the duration/geometry probe under the configured timeout.
func probeFile(ctx context.Context, cfg *config.Config, path string) (*probe.Result, error) {
	if cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.ProbeTimeout)*time.Second)
		defer cancel()
	}
	return probe.Probe(ctx, path)
}

// runTitle tokenizes the file stem, applies the grammar rules, and renders
// the title card. Grammar findings are advisory and logged at ISSUE level.
// When only the overlay is wanted, the composed request is returned without
// writing a card.
func runTitle(
	cfg *config.Config,
	log *logging.Logger,
	titles *titlePipeline,
	stem, outDir string,
	stats *RunStats,
) (outcome, *render.Request) {
	if !titles.wanted() {
		return outcomeDisabled, nil
	}

	phrase, err := titles.tok.Tokenize(stem)
	if err != nil {
		log.Issue("Title skipped: %v", err)
		return outcomeFailed, nil
	}
	corrected, issues := titles.chk.Check(phrase)
	for _, is := range issues {
		log.Issue("  Grammar [%s] token %d: %q -> %q", is.Rule, is.Position, is.Original, is.Corrected)
	}
	if corrected.Empty() {
		log.Warn("No words left after tokenizing %q", stem)
		return outcomeFailed, nil
	}

	req, err := render.Compose(corrected, titles.font)
	if err != nil {
		log.Error("Title composition failed: %v", err)
		return outcomeFailed, nil
	}

	if !titles.card {
		return outcomeOK, &req
	}

	cardPath := filepath.Join(outDir, "00 - title.png")
	if !cfg.Overwrite {
		if _, err := os.Stat(cardPath); err == nil {
			log.Warn("Skip (exists): %s", filepath.Base(cardPath))
			stats.Titled++
			return outcomeOK, &req
		}
	}
	if cfg.DryRun {
		log.Success("[DRY] Would render title card %q", req.Text)
		stats.Titled++
		return outcomeOK, &req
	}

	img, err := render.TitleCard(req, cfg.CardWidth, cfg.CardHeight)
	if err != nil {
		log.Error("Title render failed: %v", err)
		return outcomeFailed, &req
	}
	if err := render.SavePNG(cardPath, img); err != nil {
		log.Error("Title write failed: %v", err)
		return outcomeFailed, &req
	}

	stats.Titled++
	if info, err := os.Stat(cardPath); err == nil {
		stats.TotalOutputBytes += info.Size()
	}
	log.Render("Title card: %s (%q)", filepath.Base(cardPath), req.Text)
	return outcomeOK, &req
}

// runScreenshots schedules timestamps against the exclusion probe, commits
// full-quality extractions for accepted slots, and optionally overlays the
// title on each frame.
func runScreenshots(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	path string,
	duration float64,
	outDir string,
	titles *titlePipeline,
	req *render.Request,
	stats *RunStats,
	workDir string,
) outcome {
	if duration <= 0 {
		log.Error("Unknown duration, cannot schedule screenshots")
		return outcomeFailed
	}

	x := extract.New(path, workDir, extract.Options{
		BlackLumaMax:   cfg.BlackLumaMax,
		DupDistanceMax: cfg.DupDistance,
		Aspect:         extract.AspectMode(cfg.Aspect),
	})

	probeFn := x.ExclusionProbe()
	if cfg.DryRun {
		// No frame analysis on a dry run; every candidate is accepted.
		probeFn = func(context.Context, float64) (bool, string, error) { return false, "", nil }
	}

	retries := cfg.RetryBudget
	if retries <= 0 {
		// Zero from the CLI means no retries, not the package default.
		retries = -1
	}

	plan, err := schedule.Build(ctx, duration, cfg.Screenshots, probeFn, schedule.Options{
		MarginFrac:   cfg.MarginPercent / 100,
		JitterFrac:   cfg.JitterPercent / 100,
		RetryBudget:  retries,
		Workers:      cfg.Workers,
		ProbeTimeout: time.Duration(cfg.ProbeTimeout) * time.Second,
	})
	if err != nil {
		log.Error("Scheduling failed: %v", err)
		return outcomeFailed
	}

	for _, rej := range plan.Rejected {
		log.Issue("  Slot %d unfilled at %s: %s", rej.Slot+1, display.FormatTimestamp(rej.Timestamp), rej.Reason)
	}

	written := 0
	for i, ts := range plan.Accepted {
		if ctx.Err() != nil {
			break
		}
		name := fmt.Sprintf("%02d - %s.png", i+1, display.FormatTimestampPath(ts))
		outPath := filepath.Join(outDir, name)

		if !cfg.Overwrite {
			if _, err := os.Stat(outPath); err == nil {
				log.Warn("Skip (exists): %s", name)
				written++
				continue
			}
		}
		if cfg.DryRun {
			log.Success("[DRY] Would extract %s at %s", name, display.FormatTimestamp(ts))
			stats.Screenshots++
			written++
			continue
		}

		if err := x.Frame(ctx, ts, outPath); err != nil {
			log.Error("Extraction failed: %v", err)
			continue
		}
		if titles.overlay && req != nil {
			if err := overlayTitle(*req, outPath); err != nil {
				log.Warn("Overlay failed on %s: %v", name, err)
			}
		}
		if info, err := os.Stat(outPath); err == nil {
			stats.TotalOutputBytes += info.Size()
		}
		stats.Screenshots++
		written++
		log.Debug(cfg.Verbose, "  Wrote %s", name)
	}

	switch {
	case written == cfg.Screenshots:
		log.Success("Screenshots: %d/%d", written, cfg.Screenshots)
		return outcomeOK
	case written > 0:
		log.Warn("Screenshots: %d/%d", written, cfg.Screenshots)
		return outcomePartial
	default:
		log.Error("Screenshots: 0/%d", cfg.Screenshots)
		return outcomeFailed
	}
}

// overlayTitle re-reads an extracted frame, draws the caption band, and
// writes it back in place.
func overlayTitle(req render.Request, path string) error {
	base, err := render.LoadPNG(path)
	if err != nil {
		return err
	}
	img, err := render.Overlay(req, base)
	if err != nil {
		return err
	}
	return render.SavePNG(path, img)
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats, titles *titlePipeline) {
	log.Info("Found %d files", stats.Total)
	log.Info("Screenshots: %d per video, margin %.0f%%, jitter %.0f%%, %d retries, %d workers",
		cfg.Screenshots, cfg.MarginPercent, cfg.JitterPercent, cfg.RetryBudget, cfg.Workers)
	if cfg.Aspect != config.AspectSource {
		log.Info("Framing: %s", cfg.Aspect)
	}
	if titles.card {
		log.Info("Title card: %dx%d, font %s", cfg.CardWidth, cfg.CardHeight, titles.font.Name)
	} else {
		log.Info("Title card: disabled")
	}
	if titles.overlay {
		log.Info("Overlay: title drawn on each screenshot")
	}
	if cfg.Overwrite {
		log.Info("Overwrite: existing outputs are replaced")
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d complete, %d partial, %d skipped, %d failed",
		stats.Completed, stats.Partial, stats.Skipped, stats.Failed)
	if cfg.DryRun {
		log.Info("  Title cards: %d, screenshots: %d (dry run, nothing written)",
			stats.Titled, stats.Screenshots)
		return
	}
	log.Info("  Title cards: %d, screenshots: %d", stats.Titled, stats.Screenshots)
	if stats.TotalOutputBytes > 0 {
		log.Success("  Output written: %s", display.FormatBytes(stats.TotalOutputBytes))
	}
}
