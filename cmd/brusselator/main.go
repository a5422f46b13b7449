package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/brusselator/internal/config"
	"github.com/san-kum/brusselator/internal/grid"
	"github.com/san-kum/brusselator/internal/pde"
	"github.com/san-kum/brusselator/internal/render"
	"github.com/san-kum/brusselator/internal/run"
	"github.com/san-kum/brusselator/internal/tui"
)

var (
	configFile  string
	resultsRoot string
	workers     int
	seed        int64
	useTUI      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "brusselator",
		Short: "Brusselator reaction-diffusion batch renderer",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "settings.yaml", "settings document path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate and render every configured mode",
		RunE:  runBatch,
	}
	runCmd.Flags().StringVar(&resultsRoot, "results", "results", "results root directory")
	runCmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 = one per CPU)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "base random seed (0 = time-derived)")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "show live progress view")

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "list configured modes",
		RunE:  listModes,
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "validate the configuration and report stability margins",
		RunE:  checkConfig,
	}

	previewCmd := &cobra.Command{
		Use:   "preview [mode title]",
		Short: "coarse in-terminal run of one mode, no files written",
		Args:  cobra.MaximumNArgs(1),
		RunE:  previewMode,
	}

	rootCmd.AddCommand(runCmd, modesCmd, checkCmd, previewCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	batch := run.NewBatch(cfg, resultsRoot)
	if workers > 0 {
		batch.Workers = workers
	}
	if seed != 0 {
		batch.Seed = seed
	}

	if !useTUI {
		start := time.Now()
		runDir, err := batch.Run(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("completed in %v\n", time.Since(start).Round(time.Second))
		fmt.Printf("results: %s\n", runDir)
		return nil
	}

	titles := make([]string, len(cfg.Modes))
	for i, m := range cfg.Modes {
		titles[i] = m.Title
	}
	p := tea.NewProgram(tui.NewModel(titles))
	batch.Reporter = tui.Reporter{Program: p}

	go func() {
		runDir, err := batch.Run(context.Background())
		p.Send(tui.BatchDone{RunDir: runDir, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listModes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tA\tB\tD0\tD1\tFILENAME")
	for _, m := range cfg.Modes {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n",
			m.Title, m.A, m.B, m.D0, m.D1, m.Filename)
	}
	return w.Flush()
}

func checkConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if _, err := render.LookupColormap(cfg.UColor); err != nil {
		return fmt.Errorf("u_color: %w", err)
	}
	if _, err := render.LookupColormap(cfg.VColor); err != nil {
		return fmt.Errorf("v_color: %w", err)
	}

	fmt.Printf("configuration ok: %d modes, resolution %d, dt %.6f (scaled), spacing %.5f\n\n",
		len(cfg.Modes), cfg.Resolution, cfg.ScaledDt, cfg.Spacing)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tSTABLE DT\tMARGIN\tVERDICT")
	for _, m := range cfg.Modes {
		sys := pde.System{A: m.A, B: m.B, D0: m.D0, D1: m.D1}
		limit := sys.StableStep(cfg.Spacing)
		verdict := "ok"
		if cfg.ScaledDt > limit {
			verdict = "UNSTABLE (expect blow-up)"
		}
		fmt.Fprintf(w, "%s\t%.2e\t%.2fx\t%s\n", m.Title, limit, limit/cfg.ScaledDt, verdict)
	}
	return w.Flush()
}

// previewResolution caps the grid for terminal previews; the full grid is
// pointless when the output is an 80-column graph.
const previewResolution = 48

func previewMode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	mode := cfg.Modes[0]
	if len(args) == 1 {
		found := false
		for _, m := range cfg.Modes {
			if m.Title == args[0] {
				mode = m
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no mode titled %q", args[0])
		}
	}

	resolution := cfg.Resolution
	if resolution > previewResolution {
		resolution = previewResolution
	}

	g := grid.New(resolution, cfg.Radius, cfg.FixedBoundary)
	sys := pde.System{A: mode.A, B: mode.B, D0: mode.D0, D1: mode.D1}
	u, v := sys.InitialState(g, time.Now().UnixNano())
	solver := pde.NewSolver(sys, g, cfg.ScaledDt, cfg.TrackerInterval)

	fmt.Printf("previewing %q at %dx%d, t_max %.0f...\n", mode.Title, resolution, resolution, cfg.TMax)
	snaps, err := solver.Run(context.Background(), u, v, cfg.TMax)
	if err != nil {
		return err
	}
	if err := pde.Validate(snaps); err != nil {
		return err
	}

	meanU := make([]float64, len(snaps))
	meanV := make([]float64, len(snaps))
	for i, snap := range snaps {
		meanU[i] = snap.U.Mean()
		meanV[i] = snap.V.Mean()
	}

	fmt.Println(asciigraph.Plot(meanU,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean u vs time"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(meanV,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean v vs time"),
	))
	fmt.Printf("\n%d snapshots, all finite\n", len(snaps))
	return nil
}
