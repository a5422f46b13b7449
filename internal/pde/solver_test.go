package pde

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/brusselator/internal/grid"
)

func TestInitialState(t *testing.T) {
	g := grid.New(32, 5.0, false)
	sys := System{A: 1, B: 3, D0: 1, D1: 10}

	u, v := sys.InitialState(g, 42)

	for i, val := range u {
		if val != sys.A {
			t.Fatalf("u[%d]: want uniform %f, got %f", i, sys.A, val)
		}
	}

	// v is b/a plus noise of scale 0.1; its spatial mean stays close.
	mean := v.Mean()
	if math.Abs(mean-sys.B/sys.A) > 0.05 {
		t.Errorf("v mean: want ~%f, got %f", sys.B/sys.A, mean)
	}

	u2, v2 := sys.InitialState(g, 42)
	for i := range v {
		if v[i] != v2[i] || u[i] != u2[i] {
			t.Fatal("same seed should reproduce the same initial state")
		}
	}

	_, v3 := sys.InitialState(g, 43)
	same := true
	for i := range v {
		if v[i] != v3[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds should perturb v differently")
	}
}

func TestInitialStateFixedBoundaryMask(t *testing.T) {
	g := grid.New(32, 5.0, true)
	sys := System{A: 1, B: 3, D0: 1, D1: 10}

	u, v := sys.InitialState(g, 7)

	for i := 0; i < g.Resolution; i++ {
		for j := 0; j < g.Resolution; j++ {
			if g.Active(i, j) {
				continue
			}
			idx := i*g.Resolution + j
			if u[idx] != 0 || v[idx] != 0 {
				t.Fatalf("cell (%d,%d) outside the disk not zeroed: u=%f v=%f", i, j, u[idx], v[idx])
			}
		}
	}
}

func TestSolverSnapshotCount(t *testing.T) {
	g := grid.New(8, 5.0, false)
	s := NewSolver(System{A: 1, B: 2, D0: 1, D1: 1}, g, 0.01, 1.0)

	tests := []struct {
		tMax float64
		want int
	}{
		{20, 20},
		{1, 1},
		{2.5, 3},
		{0.1, 1},
	}
	for _, tt := range tests {
		if got := s.SnapshotCount(tt.tMax); got != tt.want {
			t.Errorf("tMax=%f: want %d snapshots, got %d", tt.tMax, tt.want, got)
		}
	}
}

func TestSolverRunTracksIntervals(t *testing.T) {
	g := grid.New(16, 5.0, false)
	sys := System{A: 1, B: 2, D0: 0.1, D1: 0.1}
	solver := NewSolver(sys, g, 0.001, 1.0)

	u, v := sys.InitialState(g, 1)
	snaps, err := solver.Run(context.Background(), u, v, 4)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(snaps) != 4 {
		t.Fatalf("want 4 snapshots, got %d", len(snaps))
	}
	for k, snap := range snaps {
		if math.Abs(snap.Time-float64(k)) > 0.01 {
			t.Errorf("snapshot %d at t=%f, want ~%d", k, snap.Time, k)
		}
		if len(snap.U) != g.Cells() || len(snap.V) != g.Cells() {
			t.Errorf("snapshot %d has wrong field size", k)
		}
	}

	// Snapshots are deep copies; the in-place state must not alias them.
	u[0] = 12345
	if snaps[len(snaps)-1].U[0] == 12345 {
		t.Error("snapshot aliases the live state")
	}
}

func TestSolverStableRunStaysFinite(t *testing.T) {
	// Reference parameters at a coarse grid sized so the explicit step is
	// comfortably inside the stability bound.
	g := grid.New(32, 5.0, false)
	sys := System{A: 1, B: 3, D0: 1, D1: 10}
	dt := 0.001
	if limit := sys.StableStep(g.Spacing()); dt > limit {
		t.Fatalf("test parameters unstable: dt=%f limit=%f", dt, limit)
	}

	u, v := sys.InitialState(g, 99)
	solver := NewSolver(sys, g, dt, 1.0)
	snaps, err := solver.Run(context.Background(), u, v, 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := Validate(snaps); err != nil {
		t.Fatalf("stable run reported unstable: %v", err)
	}
}

func TestSolverCancellation(t *testing.T) {
	g := grid.New(8, 5.0, false)
	sys := System{A: 1, B: 2, D0: 1, D1: 1}
	solver := NewSolver(sys, g, 0.01, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u, v := sys.InitialState(g, 1)
	_, err := solver.Run(ctx, u, v, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestValidateDetectsInstability(t *testing.T) {
	g := grid.New(8, 1.0, false)
	good := Snapshot{Time: 0, U: grid.NewField(g, 1), V: grid.NewField(g, 2)}

	badU := grid.NewField(g, 1)
	badU[3] = math.NaN()
	bad := Snapshot{Time: 5, U: badU, V: grid.NewField(g, 2)}

	if err := Validate([]Snapshot{good}); err != nil {
		t.Fatalf("finite snapshots flagged: %v", err)
	}

	err := Validate([]Snapshot{good, bad})
	if err == nil {
		t.Fatal("non-finite snapshot not detected")
	}
	if !errors.Is(err, ErrUnstable) {
		t.Errorf("want ErrUnstable, got %v", err)
	}
	var inst *InstabilityError
	if !errors.As(err, &inst) {
		t.Fatalf("want *InstabilityError, got %T", err)
	}
	if inst.Time != 5 {
		t.Errorf("want blow-up reported at t=5, got %f", inst.Time)
	}
	if inst.VStats.Mean != 2 {
		t.Errorf("diagnostics should carry the v statistics, got mean %f", inst.VStats.Mean)
	}
}

func TestStableStep(t *testing.T) {
	sys := System{D0: 1, D1: 10}
	dx := 0.5
	want := dx * dx / 40
	if got := sys.StableStep(dx); math.Abs(got-want) > 1e-15 {
		t.Errorf("want %f, got %f", want, got)
	}

	if got := (System{}).StableStep(dx); !math.IsInf(got, 1) {
		t.Errorf("diffusion-free system should have no step limit, got %f", got)
	}
}
