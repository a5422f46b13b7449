// Package run drives the per-mode pipeline (simulate, validate, render,
// encode) and coordinates a batch of modes across a worker pool.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/brusselator/internal/config"
	"github.com/san-kum/brusselator/internal/grid"
	"github.com/san-kum/brusselator/internal/pde"
	"github.com/san-kum/brusselator/internal/render"
	"github.com/san-kum/brusselator/internal/video"
)

// Runner executes single modes against one run directory.
type Runner struct {
	cfg    *config.Config
	runDir string
	log    *slog.Logger
}

func NewRunner(cfg *config.Config, runDir string, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, runDir: runDir, log: logger}
}

// RunMode takes one mode end to end: integrate the PDE, validate every
// snapshot, render the frame sequence, chart the mean concentrations, and
// encode the video. A numerical blow-up aborts the mode before any frame is
// written; no partial video is ever produced for an unstable run.
func (r *Runner) RunMode(ctx context.Context, mode config.Mode, seed int64) error {
	log := r.log.With("mode", mode.Title)
	log.Info("starting mode")

	g := grid.New(r.cfg.Resolution, r.cfg.Radius, r.cfg.FixedBoundary)
	sys := pde.System{A: mode.A, B: mode.B, D0: mode.D0, D1: mode.D1}

	if limit := sys.StableStep(g.Spacing()); r.cfg.ScaledDt > limit {
		log.Warn("step size exceeds explicit stability limit",
			"dt", r.cfg.ScaledDt, "limit", limit)
	}

	u, v := sys.InitialState(g, seed)
	solver := pde.NewSolver(sys, g, r.cfg.ScaledDt, r.cfg.TrackerInterval)

	snaps, err := solver.Run(ctx, u, v, r.cfg.TMax)
	if err != nil {
		return fmt.Errorf("mode %s: solve: %w", mode.Title, err)
	}
	log.Debug("integration finished", "snapshots", len(snaps))

	if err := pde.Validate(snaps); err != nil {
		var inst *pde.InstabilityError
		if errors.As(err, &inst) {
			log.Error("invalid values encountered", "time", inst.Time)
			log.Debug("u statistics",
				"min", inst.UStats.Min, "max", inst.UStats.Max,
				"mean", inst.UStats.Mean, "std", inst.UStats.Std)
			log.Debug("v statistics",
				"min", inst.VStats.Min, "max", inst.VStats.Max,
				"mean", inst.VStats.Mean, "std", inst.VStats.Std)
		}
		return fmt.Errorf("mode %s: %w", mode.Title, err)
	}

	framesDir := filepath.Join(r.runDir, mode.FramesDir())
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("mode %s: create frames dir: %w", mode.Title, err)
	}
	log.Debug("frames directory created", "dir", framesDir)

	renderer, err := render.NewFrameRenderer(g, mode, r.cfg)
	if err != nil {
		return fmt.Errorf("mode %s: %w", mode.Title, err)
	}
	for i, snap := range snaps {
		if err := renderer.WriteFrame(framesDir, i, snap); err != nil {
			return fmt.Errorf("mode %s: write frame %d: %w", mode.Title, i, err)
		}
		log.Info("saved frame", "frame", i, "t", snap.Time)
	}

	if err := r.writeMeanChart(mode, snaps); err != nil {
		// The chart is a summary artifact, not part of the frame sequence;
		// losing it does not invalidate the video.
		log.Warn("stats chart failed", "error", err)
	}

	videoPath := filepath.Join(r.runDir, mode.Filename)
	encoder := video.NewEncoder(r.cfg.FrameRate, log)
	frames, err := encoder.Encode(framesDir, videoPath)
	if err != nil {
		return fmt.Errorf("mode %s: %w", mode.Title, err)
	}
	log.Info("video saved", "path", videoPath, "frames", frames)
	return nil
}

func (r *Runner) writeMeanChart(mode config.Mode, snaps []pde.Snapshot) error {
	times := make([]float64, len(snaps))
	meanU := make([]float64, len(snaps))
	meanV := make([]float64, len(snaps))
	for i, snap := range snaps {
		times[i] = snap.Time
		meanU[i] = snap.U.Mean()
		meanV[i] = snap.V.Mean()
	}
	slug := strings.TrimPrefix(mode.FramesDir(), "frames_")
	path := filepath.Join(r.runDir, "stats_"+slug+".png")
	return render.WriteMeanChart(path, mode.Title, times, meanU, meanV)
}
