package grid

import (
	"math"
	"testing"
)

func TestFieldClone(t *testing.T) {
	f := Field{1, 2, 3}
	c := f.Clone()
	c[0] = 99
	if f[0] != 1 {
		t.Error("clone aliases the original")
	}
}

func TestFieldIsFinite(t *testing.T) {
	tests := []struct {
		name string
		f    Field
		want bool
	}{
		{"finite", Field{0, -1.5, 1e300}, true},
		{"nan", Field{0, math.NaN()}, false},
		{"positive inf", Field{math.Inf(1)}, false},
		{"negative inf", Field{math.Inf(-1)}, false},
		{"empty", Field{}, true},
	}
	for _, tt := range tests {
		if got := tt.f.IsFinite(); got != tt.want {
			t.Errorf("%s: want %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestFieldSummary(t *testing.T) {
	f := Field{1, 2, 3, 4}
	s := f.Summary()

	if s.Min != 1 || s.Max != 4 {
		t.Errorf("min/max: got %f/%f", s.Min, s.Max)
	}
	if s.Mean != 2.5 {
		t.Errorf("mean: want 2.5, got %f", s.Mean)
	}
	wantStd := math.Sqrt(1.25)
	if math.Abs(s.Std-wantStd) > 1e-12 {
		t.Errorf("std: want %f, got %f", wantStd, s.Std)
	}
}

func TestFieldMean(t *testing.T) {
	if got := (Field{2, 4}).Mean(); got != 3 {
		t.Errorf("mean: want 3, got %f", got)
	}
	if got := (Field{}).Mean(); got != 0 {
		t.Errorf("empty mean: want 0, got %f", got)
	}
}
