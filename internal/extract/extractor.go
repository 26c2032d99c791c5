// Package extract pulls raster frames out of a video with ffmpeg and
// analyzes them. It supplies both halves of the screenshot pipeline's frame
// contract: the exclusion probe used while planning timestamps, and the
// full-quality commit extraction for accepted ones.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AspectMode selects the output framing for committed screenshots.
type AspectMode string

const (
	AspectSource AspectMode = "source" // Keep the source frame as-is.
	Aspect16x9   AspectMode = "16x9"   // Scale and pad to 1920x1080.
	Aspect4x3    AspectMode = "4x3"    // Scale and pad to 1440x1080.
)

// probeWidth is the downscaled width used for analysis frames. Small enough
// to keep probing cheap, large enough for luma and hash statistics.
const probeWidth = 160

// Options tunes frame analysis. Zero values fall back to defaults.
type Options struct {
	BlackLumaMax   float64 // Mean luma (0-255) below which a frame counts as near-black. Default 20.
	DupDistanceMax int     // Max dHash Hamming distance to count as a duplicate. Default 5.
	Aspect         AspectMode
}

const (
	defaultBlackLumaMax   = 20
	defaultDupDistanceMax = 5
)

func (o Options) withDefaults() Options {
	if o.BlackLumaMax <= 0 {
		o.BlackLumaMax = defaultBlackLumaMax
	}
	if o.DupDistanceMax <= 0 {
		o.DupDistanceMax = defaultDupDistanceMax
	}
	if o.Aspect == "" {
		o.Aspect = AspectSource
	}
	return o
}

// Extractor runs ffmpeg against one video file. Accepted-frame hashes are
// guarded by a mutex because the scheduler probes candidates concurrently.
type Extractor struct {
	path    string
	workDir string
	opts    Options

	mu       sync.Mutex
	accepted []uint64
}

// New builds an Extractor for the video at path. workDir holds the small
// temporary probe frames and must be writable.
func New(path, workDir string, opts Options) *Extractor {
	return &Extractor{path: path, workDir: workDir, opts: opts.withDefaults()}
}

// Frame extracts the frame at ts to outPath as a full-quality image,
// applying the configured aspect framing.
func (x *Extractor) Frame(ctx context.Context, ts float64, outPath string) error {
	kwargs := ffmpeg.KwArgs{"frames:v": 1, "qscale:v": 2}
	if vf := aspectFilter(x.opts.Aspect); vf != "" {
		kwargs["vf"] = vf
	}
	stream := ffmpeg.Input(x.path, ffmpeg.KwArgs{"ss": formatSeconds(ts)}).
		Output(outPath, kwargs).
		OverWriteOutput()

	if err := runCompiled(ctx, stream); err != nil {
		return fmt.Errorf("extract frame at %s: %w", formatSeconds(ts), err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("extract frame at %s: no output written", formatSeconds(ts))
	}
	return nil
}

// probeFrame extracts a downscaled frame at ts and decodes it for analysis.
// The temporary file is removed before returning.
func (x *Extractor) probeFrame(ctx context.Context, ts float64) (image.Image, error) {
	tmp := filepath.Join(x.workDir, fmt.Sprintf("probe_%s.png", strings.ReplaceAll(formatSeconds(ts), ".", "_")))
	defer os.Remove(tmp)

	stream := ffmpeg.Input(x.path, ffmpeg.KwArgs{"ss": formatSeconds(ts)}).
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:-1", probeWidth)}).
		Output(tmp, ffmpeg.KwArgs{"frames:v": 1}).
		OverWriteOutput()

	if err := runCompiled(ctx, stream); err != nil {
		return nil, err
	}

	f, err := os.Open(tmp)
	if err != nil {
		return nil, fmt.Errorf("probe frame at %s: %w", formatSeconds(ts), err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode probe frame at %s: %w", formatSeconds(ts), err)
	}
	return img, nil
}

// runCompiled compiles the ffmpeg-go stream and executes it under ctx with
// captured stderr, so failures carry the tail of ffmpeg's own diagnostics.
func runCompiled(ctx context.Context, stream *ffmpeg.Stream) error {
	compiled := stream.Compile()
	cmd := exec.CommandContext(ctx, compiled.Path, compiled.Args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// lastLine returns the final non-empty stderr line, which is where ffmpeg
// puts the actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// formatSeconds renders a timestamp the way ffmpeg's -ss expects it.
func formatSeconds(ts float64) string {
	return fmt.Sprintf("%.3f", ts)
}

// aspectFilter returns the scale/pad filter chain for the given mode.
func aspectFilter(mode AspectMode) string {
	switch mode {
	case Aspect16x9:
		return "scale=iw*sar:ih,scale=1920:1080:force_original_aspect_ratio=decrease," +
			"pad=1920:1080:(ow-iw)/2:(oh-ih)/2"
	case Aspect4x3:
		return "scale=iw*sar:ih,scale=1440:1080:force_original_aspect_ratio=decrease," +
			"pad=1440:1080:(ow-iw)/2:(oh-ih)/2"
	default:
		return ""
	}
}
