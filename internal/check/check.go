// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe, and the font
// directory.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/backmassage/stillcap/internal/config"
	"github.com/backmassage/stillcap/internal/fonts"
)

// Sentinel errors returned by CheckDeps when a required tool or resource is
// missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrPNGWriteFailed  = errors.New("ffmpeg PNG test extraction failed")
	ErrNoFontsFound    = errors.New("no usable fonts in the font directory")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of ffmpeg
// and ffprobe, runs a tiny PNG extraction test, and lists the fonts the
// title renderer can use. This is informational only, it does not stop on
// failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkTool(log, "ffmpeg")
	checkTool(log, "ffprobe")
	checkPNGWrite(log)
	checkFonts(cfg, log)
}

// checkTool verifies the named binary is on PATH and logs its version string.
func checkTool(log Logger, name string) {
	if _, err := exec.LookPath(name); err != nil {
		log.Error("%s not found", name)
		return
	}
	cmd := exec.Command(name, "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
}

// checkPNGWrite runs a minimal single-frame PNG extraction against a lavfi
// test source.
func checkPNGWrite(log Logger) {
	log.Info("Testing PNG frame extraction...")
	if runSilent("ffmpeg", pngTestArgs()...) {
		log.Success("PNG extraction works")
	} else {
		log.Error("PNG test extraction failed")
	}
}

// checkFonts scans the configured font directory and lists every usable font
// with its 1-based index, the same numbering --font accepts.
func checkFonts(cfg *config.Config, log Logger) {
	log.Info("Fonts in %s:", cfg.FontsDir)
	list, err := fonts.Scan(cfg.FontsDir)
	if err != nil {
		log.Warn("Could not scan font directory: %v", err)
		return
	}
	if len(list) == 0 {
		log.Warn("No .ttf or .otf fonts found")
		return
	}
	for i, f := range list {
		log.Info("  %d. %s (%s)", i+1, f.Name, f.Format)
	}
	sel, err := fonts.Select(list, cfg.FontName)
	if err != nil {
		log.Error("Font selection %q: %v", cfg.FontName, err)
		return
	}
	log.Success("Selected font: %s", sel.Name)
}

// CheckDeps is the pre-pipeline validation: it verifies that ffmpeg and
// ffprobe are on PATH, that ffmpeg can actually write PNG frames, and, when
// title output is enabled, that the font directory yields at least one font.
// Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent("ffmpeg", pngTestArgs()...) {
		return ErrPNGWriteFailed
	}

	if cfg.MakeTitleCard || cfg.OverlayTitles {
		list, err := fonts.Scan(cfg.FontsDir)
		if err != nil || len(list) == 0 {
			return ErrNoFontsFound
		}
		if _, err := fonts.Select(list, cfg.FontName); err != nil {
			return err
		}
	}
	return nil
}

// --- internal helpers ---

// pngTestArgs returns the ffmpeg arguments for a minimal one-frame PNG
// encode against a synthetic source. Shared by checkPNGWrite and CheckDeps.
func pngTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=gray:s=64x64:d=0.1",
		"-frames:v", "1", "-c:v", "png",
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
