package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/stillcap/internal/config"
	"github.com/backmassage/stillcap/internal/logging"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	touch(t, dir, "show.mp4")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "anime.avi")
	touch(t, dir, "special.m4v")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"anime.avi", "movie.mkv", "show.mp4", "special.m4v"}
	got := basenames(files)
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_AllVideoExtensions(t *testing.T) {
	dir := t.TempDir()
	exts := []string{".mkv", ".mp4", ".avi", ".m4v", ".mov", ".wmv",
		".flv", ".webm", ".ts", ".m2ts", ".mpg", ".mpeg", ".vob", ".ogv"}
	for _, ext := range exts {
		touch(t, dir, "file"+ext)
	}
	touch(t, dir, "file.jpg")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != len(exts) {
		t.Errorf("got %d files, want %d", len(files), len(exts))
	}
}

func TestDiscover_PrunesExtrasAndHidden(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "main.mkv")
	os.MkdirAll(filepath.Join(dir, "Extras"), 0o755)
	touch(t, filepath.Join(dir, "Extras"), "bonus.mkv")
	os.MkdirAll(filepath.Join(dir, ".cache"), 0o755)
	touch(t, filepath.Join(dir, ".cache"), "stale.mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1 (extras and hidden dirs should be pruned)", len(files))
	}
}

func TestDiscover_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "Show", "Season 01"), 0o755)
	os.MkdirAll(filepath.Join(dir, "Show", "Season 02"), 0o755)
	touch(t, filepath.Join(dir, "Show", "Season 02"), "ep01.mkv")
	touch(t, filepath.Join(dir, "Show", "Season 01"), "ep02.mkv")
	touch(t, filepath.Join(dir, "Show", "Season 01"), "ep01.mkv")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i] < files[i-1] {
			t.Errorf("not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDiscover_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "MOVIE.MKV")
	touch(t, dir, "Show.Mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 (case-insensitive ext matching)", len(files))
	}
}

// --- RunStats tests ---

func TestRunStats_Produced(t *testing.T) {
	var s RunStats
	if s.Produced() {
		t.Error("empty stats should not report output")
	}
	s.Titled = 1
	if !s.Produced() {
		t.Error("stats with a title card should report output")
	}
	s = RunStats{Screenshots: 2}
	if !s.Produced() {
		t.Error("stats with screenshots should report output")
	}
}

// --- IQR outlier tests ---

func TestComputeStats_Classify(t *testing.T) {
	// A batch of feature-length files plus one short sample.
	durations := []float64{5200, 5400, 5500, 5600, 5700, 5900}
	stats := computeStats(durations)
	if !stats.valid {
		t.Fatal("stats should be valid with spread values")
	}
	if got := stats.classify(5500); got != "" {
		t.Errorf("classify(5500) = %q, want normal", got)
	}
	if got := stats.classify(120); got != "extreme" {
		t.Errorf("classify(120) = %q, want extreme", got)
	}
	if got := stats.classify(0); got != "" {
		t.Errorf("classify(0) = %q, want normal (no data)", got)
	}
}

func TestComputeStats_TooFewValues(t *testing.T) {
	stats := computeStats([]float64{100, 200, 300})
	if stats.valid {
		t.Error("fewer than 4 values should not produce valid bounds")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	if got := percentile(sorted, 50); got != 25 {
		t.Errorf("percentile(50) = %v, want 25", got)
	}
	if got := percentile(sorted, 0); got != 10 {
		t.Errorf("percentile(0) = %v, want 10", got)
	}
	if got := percentile(sorted, 100); got != 40 {
		t.Errorf("percentile(100) = %v, want 40", got)
	}
}

// --- Dry-run integration test ---

func TestDryRunPipeline(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	inputDir := t.TempDir()
	outputDir := t.TempDir()

	// Generate two short synthetic video files with unix-safe names.
	for _, name := range []string{"the-matrix-reloaded.mp4", "alien_3.mp4"} {
		path := filepath.Join(inputDir, name)
		gen := exec.Command("ffmpeg",
			"-f", "lavfi", "-i", "testsrc=duration=2:size=1280x720:rate=24",
			"-c:v", "libx264", "-pix_fmt", "yuv420p",
			"-y", path,
		)
		gen.Stderr = os.Stderr
		if err := gen.Run(); err != nil {
			t.Fatalf("generate %s: %v", name, err)
		}
	}

	// Extras dir content must be excluded from the batch.
	os.MkdirAll(filepath.Join(inputDir, "Extras"), 0o755)
	genExtras := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=24",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-y", filepath.Join(inputDir, "Extras", "bonus.mp4"),
	)
	genExtras.Stderr = os.Stderr
	genExtras.Run()

	cfg := config.DefaultConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = outputDir
	cfg.DryRun = true
	cfg.MakeTitleCard = false // no fonts in the test environment
	cfg.ColorMode = config.ColorNever

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer log.Close()

	stats := Run(context.Background(), &cfg, log)

	t.Logf("Total=%d Completed=%d Partial=%d Skipped=%d Failed=%d Screenshots=%d",
		stats.Total, stats.Completed, stats.Partial, stats.Skipped, stats.Failed, stats.Screenshots)

	if stats.Total != 2 {
		t.Errorf("Total: got %d, want 2 (extras should be excluded)", stats.Total)
	}
	if stats.Completed != 2 {
		t.Errorf("Completed: got %d, want 2 (dry-run slots all accepted)", stats.Completed)
	}
	if stats.Failed != 0 {
		t.Errorf("Failed: got %d, want 0", stats.Failed)
	}
	if stats.Screenshots != 2*cfg.Screenshots {
		t.Errorf("Screenshots: got %d, want %d", stats.Screenshots, 2*cfg.Screenshots)
	}

	// Dry run must not create per-file output directories.
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries into the output directory", len(entries))
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
