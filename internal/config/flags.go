package config

// This file implements CLI flag parsing and help text. Flags are grouped
// into screenshot, title, behavior, display, and utility. Negated flags
// (e.g. --no-title) are applied after Parse so Config defaults (and config
// file values) hold unless the flag is actually passed.

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses args (os.Args[1:]) into cfg. On --help or --version it
// prints and exits. On error it returns non-nil (e.g. unknown flag, missing
// positional args).
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("stillcap", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	var negated negatedFlags

	defineScreenshotFlags(fs, cfg)
	defineTitleFlags(fs, cfg, &negated)
	defineBehaviorFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "stillcap v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags applied after Parse. These either invert
// a default (e.g. noTitle -> MakeTitleCard=false) or trigger exit.
type negatedFlags struct {
	noTitle     bool
	overlay     bool
	force       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineScreenshotFlags registers -n/--shots and the scheduler tuning flags.
func defineScreenshotFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Screenshots, "shots", cfg.Screenshots, "Screenshots per video")
	fs.IntVar(&cfg.Screenshots, "n", cfg.Screenshots, "Same as --shots")
	fs.Float64Var(&cfg.MarginPercent, "margin", cfg.MarginPercent, "Head/tail exclusion margin (percent of duration)")
	fs.Float64Var(&cfg.JitterPercent, "jitter", cfg.JitterPercent, "Retry jitter window (percent of slot interval)")
	fs.IntVar(&cfg.RetryBudget, "retries", cfg.RetryBudget, "Jittered retries per slot (negative disables)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent frame probes")
	fs.IntVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "Per-probe timeout in seconds (0 disables)")
	fs.Var(&aspectValue{&cfg.Aspect}, "aspect", "Screenshot framing: source | 16x9 | 4x3")
}

// defineTitleFlags registers the title-card flags.
func defineTitleFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noTitle, "no-title", false, "Skip the title card")
	fs.BoolVar(&n.overlay, "overlay", false, "Draw the title on each screenshot")
	fs.StringVar(&cfg.FontsDir, "fonts", cfg.FontsDir, "Font directory")
	fs.StringVar(&cfg.FontName, "font", cfg.FontName, "Font display name or 1-based index (default: first)")
}

// defineBehaviorFlags registers force and dry-run.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.force, "force", false, "Overwrite existing output files")
	fs.BoolVar(&n.force, "f", false, "Same as --force")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not extract or render")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&cfg.AnalyzeOnly, "analyze", false, "Probe-only report of the input directory")
	fs.BoolVar(&cfg.AnalyzeOnly, "a", false, "Same as --analyze")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --config (consumed early by FilePath, but
// registered so Parse accepts it), --version, and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")
	fs.StringVar(&cfg.ConfigFile, "C", cfg.ConfigFile, "Same as --config")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noTitle {
		cfg.MakeTitleCard = false
	}
	if n.overlay {
		cfg.OverlayTitles = true
	}
	if n.force {
		cfg.Overwrite = true
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDir and OutputDir from the two positional
// args when not in CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if cfg.AnalyzeOnly {
		if len(args) != 1 {
			return fmt.Errorf("analyze mode needs exactly input_dir")
		}
		cfg.InputDir = NormalizeDirArg(args[0])
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly input_dir and output_dir")
	}
	cfg.InputDir = NormalizeDirArg(args[0])
	cfg.OutputDir = NormalizeDirArg(args[1])
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "Stillcap v" + version + " - title cards and screenshots from video files"},
		{"", ""},
		{"  stillcap [OPTIONS] <input_dir> <output_dir>", ""},
		{"", ""},
		{"Screenshots", ""},
		{"  -n, --shots <count>", "Screenshots per video (default: 3)"},
		{"  --margin <percent>", "Head/tail exclusion margin (default: 5)"},
		{"  --jitter <percent>", "Retry jitter window (default: 20)"},
		{"  --retries <count>", "Jittered retries per slot (default: 3)"},
		{"  --workers <count>", "Concurrent frame probes (default: 4)"},
		{"  --probe-timeout <seconds>", "Per-probe timeout (default: 30)"},
		{"  --aspect <source|16x9|4x3>", "Screenshot framing (default: source)"},
		{"", ""},
		{"Title card", ""},
		{"  --no-title", "Skip the title card"},
		{"  --overlay", "Draw the title on each screenshot"},
		{"  --fonts <dir>", "Font directory (default: ./fonts)"},
		{"  --font <name|index>", "Font selection (default: first font found)"},
		{"", ""},
		{"Output & behavior", ""},
		{"  -f, --force", "Overwrite existing output files"},
		{"  -d, --dry-run", "Preview only; do not extract or render"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -C, --config <path>", "YAML config file"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, fonts)"},
		{"  -a, --analyze", "Probe-only report of the input directory"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the AspectMode enum works with flag.Var.

type aspectValue struct{ p *AspectMode }

func (a *aspectValue) String() string {
	if a.p == nil {
		return ""
	}
	return string(*a.p)
}

func (a *aspectValue) Set(s string) error {
	switch AspectMode(s) {
	case AspectSource, Aspect16x9, Aspect4x3:
		*a.p = AspectMode(s)
		return nil
	}
	return fmt.Errorf("invalid aspect %q (use 'source', '16x9' or '4x3')", s)
}
