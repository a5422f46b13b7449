package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/brusselator/internal/config"
	"github.com/san-kum/brusselator/internal/grid"
	"github.com/san-kum/brusselator/internal/pde"
)

// Frame layout. The plot area is the grid scaled to roughly targetPlot
// pixels; margins hold the title, axis labels, two color bars and the
// description strip.
const (
	targetPlot   = 512
	marginTop    = 40
	marginLeft   = 56
	marginRight  = 140
	descHeight   = 56
	marginBottom = 20 + descHeight

	layerAlpha = 0.6

	barWidth = 16
	barGap   = 20

	lineHeight = 13
	charWidth  = 7
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	gray  = color.RGBA{120, 120, 120, 255}
)

// FrameRenderer composites one snapshot of a mode into an annotated image.
// All frames of a mode share fixed color bounds so brightness is comparable
// across frames and across modes.
type FrameRenderer struct {
	g    *grid.Grid
	mode config.Mode
	uMap *Colormap
	vMap *Colormap
	vmin float64
	vmax float64
	cell int
	plot int
}

// NewFrameRenderer resolves the colormaps and layout for one mode.
func NewFrameRenderer(g *grid.Grid, mode config.Mode, cfg *config.Config) (*FrameRenderer, error) {
	uMap, err := LookupColormap(cfg.UColor)
	if err != nil {
		return nil, err
	}
	vMap, err := LookupColormap(cfg.VColor)
	if err != nil {
		return nil, err
	}
	cell := targetPlot / g.Resolution
	if cell < 1 {
		cell = 1
	}
	return &FrameRenderer{
		g:    g,
		mode: mode,
		uMap: uMap,
		vMap: vMap,
		vmin: cfg.ColorVMin,
		vmax: cfg.ColorVMax,
		cell: cell,
		plot: cell * g.Resolution,
	}, nil
}

// Size returns the pixel dimensions of every frame this renderer produces.
func (r *FrameRenderer) Size() (w, h int) {
	return marginLeft + r.plot + marginRight, marginTop + r.plot + marginBottom
}

// FramePath returns the zero-padded path of frame idx inside framesDir.
func FramePath(framesDir string, idx int) string {
	return filepath.Join(framesDir, fmt.Sprintf("frame_%04d.png", idx))
}

// WriteFrame renders one snapshot and writes it as a PNG named by its
// sequential index.
func (r *FrameRenderer) WriteFrame(framesDir string, idx int, snap pde.Snapshot) error {
	return WritePNG(r.Render(snap), FramePath(framesDir, idx))
}

// WritePNG encodes img to path.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Render composites the field pair with its annotations. Cells outside the
// circular active region are excluded from color mapping entirely; the
// background shows through.
func (r *FrameRenderer) Render(snap pde.Snapshot) *image.RGBA {
	w, h := r.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w, h, white)

	px, py := marginLeft, marginTop
	r.drawFields(img, px, py, snap)
	drawBorder(img, px-1, py-1, r.plot+2, r.plot+2, black)

	r.drawTitle(img, w)
	r.drawAxisLabels(img, px, py)
	r.drawColorbar(img, px+r.plot+barGap, py, r.uMap, "Compound X")
	r.drawColorbar(img, px+r.plot+2*barGap+barWidth+28, py, r.vMap, "Compound Y")
	r.drawParamsBox(img, px, py)
	r.drawDescription(img, w, py+r.plot+24)
	return img
}

func (r *FrameRenderer) drawFields(img *image.RGBA, px, py int, snap pde.Snapshot) {
	span := r.vmax - r.vmin
	n := r.g.Resolution
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !r.g.Active(i, j) {
				continue
			}
			idx := i*n + j
			c := blendOver(white, r.uMap.At((snap.U[idx]-r.vmin)/span), layerAlpha)
			c = blendOver(c, r.vMap.At((snap.V[idx]-r.vmin)/span), layerAlpha)
			fillRect(img, px+j*r.cell, py+i*r.cell, r.cell, r.cell, c)
		}
	}
}

func (r *FrameRenderer) drawTitle(img *image.RGBA, w int) {
	x := (w - len(r.mode.Title)*charWidth) / 2
	// basicfont has no bold face; the 1px double strike stands in for it.
	addLabel(img, x, 22, r.mode.Title, black)
	addLabel(img, x+1, 22, r.mode.Title, black)
}

func (r *FrameRenderer) drawAxisLabels(img *image.RGBA, px, py int) {
	addLabel(img, px+r.plot/2-charWidth/2, py+r.plot+16, "x", black)
	addLabel(img, px-24, py+r.plot/2+lineHeight/2, "y", black)
}

func (r *FrameRenderer) drawColorbar(img *image.RGBA, x, y int, cm *Colormap, label string) {
	for row := 0; row < r.plot; row++ {
		c := cm.At(1 - float64(row)/float64(r.plot-1))
		fillRect(img, x, y+row, barWidth, 1, c)
	}
	drawBorder(img, x-1, y-1, barWidth+2, r.plot+2, black)
	addLabel(img, x+barWidth+4, y+lineHeight, fmt.Sprintf("%.1f", r.vmax), black)
	addLabel(img, x+barWidth+4, y+r.plot, fmt.Sprintf("%.1f", r.vmin), black)
	addVerticalLabel(img, x-12, y+(r.plot-len(label)*lineHeight)/2, label, gray)
}

func (r *FrameRenderer) drawParamsBox(img *image.RGBA, px, py int) {
	lines := []string{
		fmt.Sprintf("a = %g", r.mode.A),
		fmt.Sprintf("b = %g", r.mode.B),
		fmt.Sprintf("d0 = %g", r.mode.D0),
		fmt.Sprintf("d1 = %g", r.mode.D1),
	}
	boxW := 0
	for _, l := range lines {
		if w := len(l)*charWidth + 12; w > boxW {
			boxW = w
		}
	}
	boxH := len(lines)*lineHeight + 10
	x := px + 8
	y := py + r.plot - boxH - 8
	fillRect(img, x, y, boxW, boxH, white)
	drawBorder(img, x, y, boxW, boxH, black)
	for i, l := range lines {
		addLabel(img, x+6, y+(i+1)*lineHeight+2, l, black)
	}
}

func (r *FrameRenderer) drawDescription(img *image.RGBA, w, y int) {
	if r.mode.Description == "" {
		return
	}
	maxChars := (w - 48) / charWidth
	lines := wrapText(r.mode.Description, maxChars)

	boxW := 0
	for _, l := range lines {
		if lw := len(l)*charWidth + 16; lw > boxW {
			boxW = lw
		}
	}
	boxH := len(lines)*lineHeight + 10
	x := (w - boxW) / 2
	fillRect(img, x, y, boxW, boxH, white)
	drawBorder(img, x, y, boxW, boxH, black)
	for i, l := range lines {
		lx := x + (boxW-len(l)*charWidth)/2
		addLabel(img, lx, y+(i+1)*lineHeight+2, l, black)
	}
}

// wrapText greedily wraps words to at most width characters per line.
func wrapText(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// blendOver alpha-composites src over dst.
func blendOver(dst, src color.RGBA, alpha float64) color.RGBA {
	mix := func(d, s uint8) uint8 {
		return uint8(float64(d)*(1-alpha) + float64(s)*alpha)
	}
	return color.RGBA{
		R: mix(dst.R, src.R),
		G: mix(dst.G, src.G),
		B: mix(dst.B, src.B),
		A: 255,
	}
}

func fillRect(img *image.RGBA, x, y, w, h int, c color.Color) {
	for i := y; i < y+h; i++ {
		for j := x; j < x+w; j++ {
			img.Set(j, i, c)
		}
	}
}

func drawBorder(img *image.RGBA, x, y, w, h int, c color.Color) {
	for j := x; j < x+w; j++ {
		img.Set(j, y, c)
		img.Set(j, y+h-1, c)
	}
	for i := y; i < y+h; i++ {
		img.Set(x, i, c)
		img.Set(x+w-1, i, c)
	}
}

// addLabel draws a text label with the basic 7x13 face; y is the baseline.
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

// addVerticalLabel stacks the label's characters top to bottom, standing in
// for a rotated axis label.
func addVerticalLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	for i, ch := range label {
		addLabel(img, x, y+i*lineHeight, string(ch), col)
	}
}
