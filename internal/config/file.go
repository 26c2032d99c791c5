package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// This file implements the optional YAML config file. Precedence is
// defaults < file < flags, so the file is loaded before ParseFlags runs;
// FilePath pre-scans os.Args for --config because the flag set has not
// been parsed yet at that point.

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from zero values so the file only overrides what it actually sets.
type fileConfig struct {
	Screenshots struct {
		Count             *int     `yaml:"count"`
		MarginPercent     *float64 `yaml:"margin_percent"`
		JitterPercent     *float64 `yaml:"jitter_percent"`
		RetryBudget       *int     `yaml:"retry_budget"`
		Workers           *int     `yaml:"workers"`
		ProbeTimeoutSecs  *int     `yaml:"probe_timeout_seconds"`
		BlackLumaMax      *float64 `yaml:"black_luma_max"`
		DuplicateDistance *int     `yaml:"duplicate_distance"`
		Aspect            *string  `yaml:"aspect"`
	} `yaml:"screenshots"`

	Title struct {
		Enabled       *bool             `yaml:"enabled"`
		Overlay       *bool             `yaml:"overlay"`
		FontsDir      *string           `yaml:"fonts_dir"`
		Font          *string           `yaml:"font"`
		CardWidth     *int              `yaml:"card_width"`
		CardHeight    *int              `yaml:"card_height"`
		Abbreviations map[string]string `yaml:"abbreviations"`
		SmallWords    []string          `yaml:"small_words"`
	} `yaml:"title"`

	Logging struct {
		LogFile *string `yaml:"log_file"`
		Verbose *bool   `yaml:"verbose"`
		Color   *string `yaml:"color"`
	} `yaml:"logging"`
}

// LoadFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected so typos surface instead of silently doing nothing.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	s := fc.Screenshots
	setInt(&cfg.Screenshots, s.Count)
	setFloat(&cfg.MarginPercent, s.MarginPercent)
	setFloat(&cfg.JitterPercent, s.JitterPercent)
	setInt(&cfg.RetryBudget, s.RetryBudget)
	setInt(&cfg.Workers, s.Workers)
	setInt(&cfg.ProbeTimeout, s.ProbeTimeoutSecs)
	setFloat(&cfg.BlackLumaMax, s.BlackLumaMax)
	setInt(&cfg.DupDistance, s.DuplicateDistance)
	if s.Aspect != nil {
		cfg.Aspect = AspectMode(*s.Aspect)
	}

	t := fc.Title
	setBool(&cfg.MakeTitleCard, t.Enabled)
	setBool(&cfg.OverlayTitles, t.Overlay)
	setString(&cfg.FontsDir, t.FontsDir)
	setString(&cfg.FontName, t.Font)
	setInt(&cfg.CardWidth, t.CardWidth)
	setInt(&cfg.CardHeight, t.CardHeight)
	if len(t.Abbreviations) > 0 {
		cfg.Abbreviations = t.Abbreviations
	}
	if len(t.SmallWords) > 0 {
		cfg.SmallWords = t.SmallWords
	}

	l := fc.Logging
	setString(&cfg.LogFile, l.LogFile)
	setBool(&cfg.Verbose, l.Verbose)
	if l.Color != nil {
		cfg.ColorMode = ColorMode(*l.Color)
	}
	return nil
}

// FilePath extracts the --config/-C value from raw args before flag
// parsing. Both "--config path" and "--config=path" forms are accepted.
// Returns empty when no config flag is present.
func FilePath(args []string) string {
	for i, a := range args {
		name := a
		value := ""
		if eq := strings.IndexByte(a, '='); eq >= 0 {
			name, value = a[:eq], a[eq+1:]
		}
		switch name {
		case "--config", "-config", "-C":
			if value != "" {
				return value
			}
			if i+1 < len(args) {
				return args[i+1]
			}
		}
	}
	return ""
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
