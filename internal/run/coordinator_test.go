package run

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/san-kum/brusselator/internal/config"
	"github.com/san-kum/brusselator/internal/logging"
	"github.com/san-kum/brusselator/internal/pde"
	"github.com/san-kum/brusselator/internal/video"
)

// testConfig returns a small, comfortably stable configuration: at zoom 0.2
// the domain is 10 units wide, so the scaled step 0.001 sits well inside
// the explicit stability bound even for d1=10.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Resolution = 16
	cfg.FrameRate = 5
	cfg.TMax = 2
	cfg.Dt = 0.1
	cfg.ZoomFactor = 0.2
	cfg.Modes = []config.Mode{{
		Title: "Test Mode", A: 1, B: 3, D0: 1, D1: 10,
		Filename:    "test_mode.avi",
		Description: "test run",
	}}
	cfg.Resolve()
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNextRunDir(t *testing.T) {
	root := t.TempDir()

	dir, n, err := NextRunDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || dir != filepath.Join(root, "1") {
		t.Errorf("empty root: want run 1, got %d (%s)", n, dir)
	}

	for _, name := range []string{"1", "3", "not-a-number"} {
		if err := os.Mkdir(filepath.Join(root, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// A plain file with a numeric name must not count.
	if err := os.WriteFile(filepath.Join(root, "7"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, n, err = NextRunDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("want run 4 after dirs 1 and 3, got %d", n)
	}
}

func TestRunModeProducesFramesAndVideo(t *testing.T) {
	cfg := testConfig()
	runDir := t.TempDir()
	runner := NewRunner(cfg, runDir, discardLogger())

	mode := cfg.Modes[0]
	if err := runner.RunMode(context.Background(), mode, 42); err != nil {
		t.Fatalf("mode failed: %v", err)
	}

	framesDir := filepath.Join(runDir, mode.FramesDir())
	entries, err := os.ReadDir(framesDir)
	if err != nil {
		t.Fatal(err)
	}
	pngs := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			pngs++
		}
	}
	// One frame per tracked snapshot: ceil(t_max / interval).
	if want := 2; pngs != want {
		t.Errorf("want %d frames, got %d", want, pngs)
	}
	if _, err := os.Stat(filepath.Join(framesDir, video.FrameName(0))); err != nil {
		t.Errorf("frame 0 missing: %v", err)
	}

	if _, err := os.Stat(filepath.Join(runDir, mode.Filename)); err != nil {
		t.Errorf("video missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(runDir, "stats_test_mode.png")); err != nil {
		t.Errorf("stats chart missing: %v", err)
	}
}

func TestRunModeUnstableProducesNoOutput(t *testing.T) {
	cfg := testConfig()
	cfg.Dt = 100 // scaled step 1.0: guaranteed blow-up
	cfg.TMax = 20
	cfg.Resolve()

	runDir := t.TempDir()
	runner := NewRunner(cfg, runDir, discardLogger())
	mode := cfg.Modes[0]

	err := runner.RunMode(context.Background(), mode, 42)
	if !errors.Is(err, pde.ErrUnstable) {
		t.Fatalf("want ErrUnstable, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(runDir, mode.FramesDir())); statErr == nil {
		t.Error("unstable mode must not leave a frames directory")
	}
	if _, statErr := os.Stat(filepath.Join(runDir, mode.Filename)); statErr == nil {
		t.Error("unstable mode must not leave a video")
	}
}

func TestBatchRun(t *testing.T) {
	cfg := testConfig()
	root := t.TempDir()

	batch := NewBatch(cfg, root)
	batch.Workers = 2
	batch.Seed = 7

	runDir, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if runDir != filepath.Join(root, "1") {
		t.Errorf("first run dir: want %s, got %s", filepath.Join(root, "1"), runDir)
	}

	for _, name := range []string{SettingsFileName, logging.LogFileName, cfg.Modes[0].Filename} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}

	// A second invocation against the same root must get run 2, leaving
	// run 1 untouched.
	runDir2, err := NewBatch(cfg, root).Run(context.Background())
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}
	if runDir2 != filepath.Join(root, "2") {
		t.Errorf("second run dir: want %s, got %s", filepath.Join(root, "2"), runDir2)
	}
	if _, err := os.Stat(filepath.Join(runDir, cfg.Modes[0].Filename)); err != nil {
		t.Errorf("first run overwritten: %v", err)
	}
}

func TestBatchRunRejectsBadColormap(t *testing.T) {
	cfg := testConfig()
	cfg.UColor = "spectral9000"
	root := t.TempDir()

	if _, err := NewBatch(cfg, root).Run(context.Background()); err == nil {
		t.Fatal("bad colormap accepted")
	}

	// Setup failures must precede run directory allocation.
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("no run directory should exist, found %d entries", len(entries))
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	started  []string
	finished []string
	failed   []string
}

func (r *recordingReporter) ModeStarted(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, title)
}

func (r *recordingReporter) ModeFinished(title string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, title)
	if err != nil {
		r.failed = append(r.failed, title)
	}
}

func TestBatchContainsModeFailures(t *testing.T) {
	cfg := testConfig()
	good := cfg.Modes[0]
	unstable := good
	unstable.Title = "Runaway"
	unstable.Filename = "runaway.avi"
	unstable.D1 = 1e6 // way past the stability bound for any sane step
	cfg.Modes = []config.Mode{unstable, good}

	rep := &recordingReporter{}
	batch := NewBatch(cfg, t.TempDir())
	batch.Workers = 2
	batch.Reporter = rep

	runDir, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("a failing mode must not fail the batch: %v", err)
	}

	if len(rep.started) != 2 || len(rep.finished) != 2 {
		t.Errorf("want 2 started/finished, got %d/%d", len(rep.started), len(rep.finished))
	}
	if len(rep.failed) != 1 || rep.failed[0] != "Runaway" {
		t.Errorf("want only Runaway to fail, got %v", rep.failed)
	}

	// The healthy sibling still produced its video.
	if _, err := os.Stat(filepath.Join(runDir, good.Filename)); err != nil {
		t.Errorf("sibling mode output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(runDir, unstable.Filename)); err == nil {
		t.Error("failed mode left a video")
	}
}
