package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/brusselator/internal/config"
	"github.com/san-kum/brusselator/internal/logging"
	"github.com/san-kum/brusselator/internal/render"
)

// SettingsFileName is the resolved-configuration echo inside each run dir.
const SettingsFileName = "settings.txt"

// Reporter receives per-mode lifecycle events during a batch. Implementations
// must be safe for concurrent workers.
type Reporter interface {
	ModeStarted(title string)
	ModeFinished(title string, err error)
}

// NopReporter ignores all events.
type NopReporter struct{}

func (NopReporter) ModeStarted(string)         {}
func (NopReporter) ModeFinished(string, error) {}

// Batch coordinates one full invocation: run directory allocation, settings
// echo, logging lifecycle, and fan-out of modes to a bounded worker pool.
type Batch struct {
	Cfg         *config.Config
	ResultsRoot string
	Workers     int
	Seed        int64
	Reporter    Reporter
}

// NewBatch builds a batch with the default pool size (one worker per CPU)
// and a time-derived seed.
func NewBatch(cfg *config.Config, resultsRoot string) *Batch {
	return &Batch{
		Cfg:         cfg,
		ResultsRoot: resultsRoot,
		Workers:     runtime.NumCPU(),
		Seed:        time.Now().UnixNano(),
		Reporter:    NopReporter{},
	}
}

// NextRunDir scans root for numerically named directories and returns the
// path for the next run number (max+1). Run numbers only ever increase, so
// re-running against the same root never overwrites prior results.
func NextRunDir(root string) (string, int, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", 0, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", 0, err
	}
	max := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(entry.Name()); err == nil && n > max {
			max = n
		}
	}
	next := max + 1
	return filepath.Join(root, strconv.Itoa(next)), next, nil
}

// Run executes the whole batch and returns the run directory it produced.
// Mode failures are contained to their worker and logged; Run itself only
// fails on setup problems that precede dispatch.
func (b *Batch) Run(ctx context.Context) (string, error) {
	// Colormap names are part of the configuration contract; resolve them
	// before any directory exists so a typo fails the batch cleanly.
	if _, err := render.LookupColormap(b.Cfg.UColor); err != nil {
		return "", fmt.Errorf("u_color: %w", err)
	}
	if _, err := render.LookupColormap(b.Cfg.VColor); err != nil {
		return "", fmt.Errorf("v_color: %w", err)
	}

	runDir, runNumber, err := NextRunDir(b.ResultsRoot)
	if err != nil {
		return "", fmt.Errorf("allocate run directory: %w", err)
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	logRun, err := logging.NewRun(runDir)
	if err != nil {
		return "", err
	}
	defer logRun.Close()
	log := logRun.Logger

	log.Info("created results directory", "dir", runDir, "run", runNumber)

	// Persist the resolved settings before any mode executes so the run is
	// reproducible from its own output folder.
	if err := config.Save(filepath.Join(runDir, SettingsFileName), b.Cfg); err != nil {
		return "", fmt.Errorf("write settings echo: %w", err)
	}
	log.Info("settings saved", "file", SettingsFileName)

	runner := NewRunner(b.Cfg, runDir, log)
	reporter := b.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	type job struct {
		mode config.Mode
		idx  int
	}
	jobs := make(chan job)

	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				reporter.ModeStarted(j.mode.Title)
				err := runner.RunMode(ctx, j.mode, b.Seed+int64(j.idx))
				if err != nil {
					log.Error("mode failed", "mode", j.mode.Title, "error", err)
				}
				reporter.ModeFinished(j.mode.Title, err)
			}
		}()
	}

	for i, mode := range b.Cfg.Modes {
		jobs <- job{mode: mode, idx: i}
	}
	close(jobs)
	wg.Wait()

	log.Info("all modes processed")
	return runDir, nil
}
