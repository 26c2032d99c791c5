// Package config holds runtime configuration: defaults, the optional YAML
// config file, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// AspectMode controls screenshot framing.
type AspectMode string

const (
	AspectSource AspectMode = "source" // Keep the source frame geometry (default).
	Aspect16x9   AspectMode = "16x9"   // Scale and pad to 1920x1080.
	Aspect4x3    AspectMode = "4x3"    // Scale and pad to 1440x1080.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags]
// before being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Screenshot selection.
	Screenshots   int        // Default: 3 per video.
	MarginPercent float64    // Head/tail exclusion, percent of duration. Default: 5.
	JitterPercent float64    // Retry perturbation window, percent of the slot interval. Default: 20.
	RetryBudget   int        // Jittered retries per slot. Default: 3. Negative disables retries.
	Workers       int        // Concurrent frame probes. Default: 4.
	ProbeTimeout  int        // Per-probe timeout in seconds. Default: 30. 0 disables.
	BlackLumaMax  float64    // Mean-luma threshold for near-black rejection. Default: 20.
	DupDistance   int        // dHash Hamming radius for duplicate rejection. Default: 5.
	Aspect        AspectMode // Default: "source".

	// Title card.
	MakeTitleCard bool   // Default: true. Cleared by --no-title.
	OverlayTitles bool   // Draw the title on each screenshot. Default: false.
	FontsDir      string // Default: "./fonts".
	FontName      string // Display name or 1-based index; empty picks the first font.
	CardWidth     int    // Default: 1920.
	CardHeight    int    // Default: 1080.

	// Title grammar (config file only).
	Abbreviations map[string]string // Extra abbreviation casings merged over the built-in table.
	SmallWords    []string          // Replaces the built-in small-word list when non-empty.

	// Behavior flags.
	Overwrite bool // Default: false (existing outputs are skipped).
	DryRun    bool

	// Display and logging.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional log file path.
	CheckOnly   bool      // Run --check diagnostics and exit.
	AnalyzeOnly bool      // Probe-only batch report; needs input_dir but no output_dir.

	// Config file path (resolved before flag parsing; see FilePath).
	ConfigFile string
}

// DefaultConfig returns a Config with all defaults set. Used as the base
// before the config file and CLI overrides are applied.
func DefaultConfig() Config {
	return Config{
		Screenshots:   3,
		MarginPercent: 5,
		JitterPercent: 20,
		RetryBudget:   3,
		Workers:       4,
		ProbeTimeout:  30,
		BlackLumaMax:  20,
		DupDistance:   5,
		Aspect:        AspectSource,
		MakeTitleCard: true,
		OverlayTitles: false,
		FontsDir:      "./fonts",
		CardWidth:     1920,
		CardHeight:    1080,
		ColorMode:     ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an
// empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly
// mode, it also requires the input and output directory paths.
func (c *Config) Validate() error {
	switch c.Aspect {
	case AspectSource, Aspect16x9, Aspect4x3:
		// valid
	default:
		return fmt.Errorf("invalid aspect %q (use 'source', '16x9' or '4x3')", c.Aspect)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Screenshots <= 0 {
		return errors.New("screenshot count must be positive")
	}
	if c.MarginPercent <= 0 || c.MarginPercent >= 50 {
		return errors.New("margin percent must be between 0 and 50 (exclusive)")
	}
	if c.JitterPercent < 0 {
		return errors.New("jitter percent must not be negative")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.ProbeTimeout < 0 {
		return errors.New("probe timeout must not be negative")
	}
	if c.CardWidth <= 0 || c.CardHeight <= 0 {
		return errors.New("title card dimensions must be positive")
	}

	if c.CheckOnly {
		return nil
	}
	if c.AnalyzeOnly {
		if c.InputDir == "" {
			return errors.New("analyze mode needs an input_dir")
		}
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or
// equal to) the resolved input directory, so the pipeline never discovers
// its own output. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
