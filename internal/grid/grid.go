// Package grid provides the square spatial domain the reaction-diffusion
// system is discretized on: boundary handling, the circular active-region
// mask, and a five-point Laplacian stencil.
package grid

import "math"

// Boundary selects how the Laplacian treats cells at the domain edge.
type Boundary int

const (
	// Periodic wraps the domain in both axes.
	Periodic Boundary = iota
	// Reflective mirrors the edge cells (zero-flux).
	Reflective
)

// Grid is a square domain [-R, R] x [-R, R] discretized into
// Resolution x Resolution cells.
type Grid struct {
	Resolution int
	Radius     float64
	Boundary   Boundary

	dx   float64
	mask []bool
}

// New builds a grid of the given resolution and half-width. When
// fixedBoundary is set the boundary is reflective and the circular mask
// restricts the active region to the centered disk.
func New(resolution int, radius float64, fixedBoundary bool) *Grid {
	g := &Grid{
		Resolution: resolution,
		Radius:     radius,
		Boundary:   Periodic,
		dx:         2 * radius / float64(resolution),
	}
	if fixedBoundary {
		g.Boundary = Reflective
	}

	// Cell (i,j) is active iff its pixel distance from the grid center is
	// within resolution/2, the pixel image of the domain half-width.
	g.mask = make([]bool, resolution*resolution)
	c := float64(resolution) / 2
	pixelRadius := float64(resolution) / 2
	for i := 0; i < resolution; i++ {
		for j := 0; j < resolution; j++ {
			d := math.Hypot(float64(j)-c, float64(i)-c)
			g.mask[i*resolution+j] = d <= pixelRadius
		}
	}
	return g
}

// Cells returns the total number of cells.
func (g *Grid) Cells() int { return g.Resolution * g.Resolution }

// Spacing returns the cell spacing dx.
func (g *Grid) Spacing() float64 { return g.dx }

// Active reports whether cell (i,j) lies inside the circular active region.
func (g *Grid) Active(i, j int) bool { return g.mask[i*g.Resolution+j] }

// ActiveIndex reports whether the flat cell index lies inside the active region.
func (g *Grid) ActiveIndex(idx int) bool { return g.mask[idx] }

// ApplyMask zeroes every cell of f outside the active region.
func (g *Grid) ApplyMask(f Field) {
	for idx := range f {
		if !g.mask[idx] {
			f[idx] = 0
		}
	}
}

// neighbor resolves an out-of-range row or column index per the boundary rule.
func (g *Grid) neighbor(i int) int {
	n := g.Resolution
	if i < 0 {
		if g.Boundary == Periodic {
			return n - 1
		}
		return 0
	}
	if i >= n {
		if g.Boundary == Periodic {
			return 0
		}
		return n - 1
	}
	return i
}

// Laplacian writes the five-point Laplacian of f into out, scaled by 1/dx^2.
// f and out must both have length Cells() and must not alias.
func (g *Grid) Laplacian(f, out Field) {
	n := g.Resolution
	inv := 1 / (g.dx * g.dx)
	for i := 0; i < n; i++ {
		up := g.neighbor(i-1) * n
		down := g.neighbor(i+1) * n
		row := i * n
		for j := 0; j < n; j++ {
			left := g.neighbor(j - 1)
			right := g.neighbor(j + 1)
			c := f[row+j]
			out[row+j] = (f[up+j] + f[down+j] + f[row+left] + f[row+right] - 4*c) * inv
		}
	}
}
