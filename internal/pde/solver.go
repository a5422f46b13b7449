package pde

import (
	"context"
	"math"

	"github.com/san-kum/brusselator/internal/grid"
)

// Snapshot is the field-pair state captured at one tracked time.
type Snapshot struct {
	Time float64
	U    grid.Field
	V    grid.Field
}

// Solver advances a System over a grid with a fixed explicit Euler step,
// emitting a deep-copied snapshot at every tracker interval.
type Solver struct {
	sys      System
	g        *grid.Grid
	dt       float64
	interval float64

	lapU grid.Field
	lapV grid.Field
}

// NewSolver builds a solver with the given step size and tracker interval.
func NewSolver(sys System, g *grid.Grid, dt, interval float64) *Solver {
	return &Solver{
		sys:      sys,
		g:        g,
		dt:       dt,
		interval: interval,
		lapU:     make(grid.Field, g.Cells()),
		lapV:     make(grid.Field, g.Cells()),
	}
}

// SnapshotCount returns the number of snapshots a run to tMax produces.
func (s *Solver) SnapshotCount(tMax float64) int {
	return int(math.Ceil(tMax / s.interval))
}

// Run integrates the field pair in place from t=0 to tMax and returns
// ceil(tMax/interval) snapshots taken at the interval boundaries, t=0
// included. Cancellation is checked once per tracked interval.
func (s *Solver) Run(ctx context.Context, u, v grid.Field, tMax float64) ([]Snapshot, error) {
	n := s.SnapshotCount(tMax)
	snaps := make([]Snapshot, 0, n)

	t := 0.0
	for k := 0; k < n; k++ {
		select {
		case <-ctx.Done():
			return snaps, ctx.Err()
		default:
		}

		for target := float64(k) * s.interval; t < target; t += s.dt {
			s.step(u, v)
		}
		snaps = append(snaps, Snapshot{Time: t, U: u.Clone(), V: v.Clone()})
	}
	return snaps, nil
}

// step advances both fields by one Euler step. Reaction terms read only
// cell-local values captured before either field is written, so the
// in-place update is safe.
func (s *Solver) step(u, v grid.Field) {
	s.g.Laplacian(u, s.lapU)
	s.g.Laplacian(v, s.lapV)

	a, b, d0, d1, dt := s.sys.A, s.sys.B, s.sys.D0, s.sys.D1, s.dt
	for i := range u {
		uu, vv := u[i], v[i]
		uuv := uu * uu * vv
		u[i] = uu + dt*(d0*s.lapU[i]+a-(b+1)*uu+uuv)
		v[i] = vv + dt*(d1*s.lapV[i]+b*uu-uuv)
	}
}

// Validate scans snapshots in order and returns an *InstabilityError for
// the first one containing a non-finite value. A diverged run invalidates
// everything downstream, so the caller must discard the whole sequence.
func Validate(snaps []Snapshot) error {
	for _, snap := range snaps {
		if !snap.U.IsFinite() || !snap.V.IsFinite() {
			return &InstabilityError{
				Time:   snap.Time,
				UStats: snap.U.Summary(),
				VStats: snap.V.Summary(),
			}
		}
	}
	return nil
}
