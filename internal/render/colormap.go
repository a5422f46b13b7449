// Package render turns solver snapshots into annotated composite frames and
// per-mode summary charts.
package render

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colormap maps a normalized value in [0,1] onto a color gradient,
// interpolated in Lab space between fixed stops.
type Colormap struct {
	Name  string
	stops []colorful.Color
}

// gradient stop tables, sampled from the matplotlib maps of the same names.
var colormapStops = map[string][]string{
	"viridis":  {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"inferno":  {"#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"},
	"plasma":   {"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"},
	"magma":    {"#000004", "#51127c", "#b73779", "#fc8961", "#fcfdbf"},
	"cividis":  {"#00224e", "#35456c", "#666970", "#a69d75", "#fee838"},
	"coolwarm": {"#3b4cc0", "#9abbff", "#dddddd", "#f49a7b", "#b40426"},
	"blues":    {"#f7fbff", "#6baed6", "#08306b"},
	"greens":   {"#f7fcf5", "#74c476", "#00441b"},
	"oranges":  {"#fff5eb", "#fd8d3c", "#7f2704"},
	"reds":     {"#fff5f0", "#fb6a4a", "#67000d"},
	"greys":    {"#ffffff", "#969696", "#000000"},
}

// LookupColormap resolves a colormap by name, case-insensitively. An
// unknown name is a configuration error.
func LookupColormap(name string) (*Colormap, error) {
	stops, ok := colormapStops[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q (available: %s)",
			name, strings.Join(ColormapNames(), ", "))
	}
	cm := &Colormap{Name: strings.ToLower(name)}
	for _, hex := range stops {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("colormap %q: %w", name, err)
		}
		cm.stops = append(cm.stops, c)
	}
	return cm, nil
}

// ColormapNames returns the supported names in sorted order.
func ColormapNames() []string {
	names := make([]string, 0, len(colormapStops))
	for name := range colormapStops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// At returns the color for a normalized position t, clamped to [0,1].
func (cm *Colormap) At(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	segments := float64(len(cm.stops) - 1)
	pos := t * segments
	i := int(pos)
	if i >= len(cm.stops)-1 {
		i = len(cm.stops) - 2
	}
	c := cm.stops[i].BlendLab(cm.stops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
