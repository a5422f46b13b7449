package grid

import "math"

// Field is one scalar field over the grid, stored row-major.
type Field []float64

// NewField allocates a field filled with a uniform value.
func NewField(g *Grid, value float64) Field {
	f := make(Field, g.Cells())
	for i := range f {
		f[i] = value
	}
	return f
}

// Clone returns a deep copy.
func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

// IsFinite reports whether every cell is a finite number.
func (f Field) IsFinite() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Stats holds summary statistics used for blow-up diagnostics.
type Stats struct {
	Min  float64
	Max  float64
	Mean float64
	Std  float64
}

// Summary computes min/max/mean/std over all cells. NaN values propagate
// into the result, which is what the diagnostics want to show.
func (f Field) Summary() Stats {
	if len(f) == 0 {
		return Stats{}
	}
	min, max := f[0], f[0]
	sum := 0.0
	for _, v := range f {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(f))
	varSum := 0.0
	for _, v := range f {
		d := v - mean
		varSum += d * d
	}
	return Stats{
		Min:  min,
		Max:  max,
		Mean: mean,
		Std:  math.Sqrt(varSum / float64(len(f))),
	}
}

// Mean returns the spatial mean of the field.
func (f Field) Mean() float64 {
	if len(f) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range f {
		sum += v
	}
	return sum / float64(len(f))
}
