// Package pde defines the Brusselator reaction-diffusion system and an
// explicit time integrator that produces finite-validated snapshot
// sequences over a 2D grid.
package pde

import (
	"math"
	"math/rand"

	"github.com/san-kum/brusselator/internal/grid"
)

// System holds the Brusselator coefficients:
//
//	du/dt = d0*lap(u) + a - (b+1)*u + u^2*v
//	dv/dt = d1*lap(v) + b*u - u^2*v
type System struct {
	A  float64
	B  float64
	D0 float64
	D1 float64
}

// NoiseScale is the amplitude of the normal perturbation added to the v
// field at initialization. The noise breaks the symmetry of the uniform
// steady state; without it no spatial pattern ever forms.
const NoiseScale = 0.1

// InitialState builds the field pair at t=0: u uniform at a, v at b/a plus
// per-cell normal noise. Under a fixed (reflective) boundary both fields
// are zeroed outside the circular active region.
func (s System) InitialState(g *grid.Grid, seed int64) (u, v grid.Field) {
	rng := rand.New(rand.NewSource(seed))

	u = grid.NewField(g, s.A)
	v = make(grid.Field, g.Cells())
	base := s.B / s.A
	for i := range v {
		v[i] = base + NoiseScale*rng.NormFloat64()
	}

	if g.Boundary == grid.Reflective {
		g.ApplyMask(u)
		g.ApplyMask(v)
	}
	return u, v
}

// StableStep returns the largest time step for which the explicit scheme is
// stable on a grid with spacing dx. Exceeding it does not stop a run; it
// makes numerical blow-up likely, which the snapshot validation catches.
func (s System) StableStep(dx float64) float64 {
	d := math.Max(s.D0, s.D1)
	if d <= 0 {
		return math.Inf(1)
	}
	return dx * dx / (4 * d)
}
