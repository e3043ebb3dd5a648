// Package render draws the clustered-heatmap figure from an
// analysis.RenderSpec: the reordered gradient heatmap, the two
// dendrograms, and the significant mutation and copy-number tracks. The
// numeric pipeline only builds the spec; everything visual lives here.
package render

import (
	"image/color"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/cooperlab/survivalnet/analysis"
	"github.com/cooperlab/survivalnet/clustering"
)

// Config sizes the output figure.
type Config struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultConfig matches the original square figure proportions.
func DefaultConfig() Config {
	return Config{Width: 15 * vg.Inch, Height: 15 * vg.Inch}
}

// Save renders the spec to a PNG file.
func Save(spec *analysis.RenderSpec, filename string, cfg Config) error {
	img := vgimg.New(cfg.Width, cfg.Height)

	rows, err := buildRows(spec)
	if err != nil {
		return err
	}
	tiles := draw.Tiles{
		Rows: len(rows),
		Cols: 2,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter,
		PadLeft: vg.Millimeter, PadRight: vg.Millimeter,
	}
	canvases := plot.Align(rows, tiles, draw.New(img))
	for i, row := range rows {
		for j, p := range row {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filename)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return errors.Wrapf(err, "writing %s", filename)
	}
	return nil
}

// buildRows lays the figure out on a two-column grid: dendrograms and
// labels on the left, matrices on the right.
func buildRows(spec *analysis.RenderSpec) ([][]*plot.Plot, error) {
	sampleDend, err := dendrogramPlot(spec.SampleTree, spec.SampleOrder)
	if err != nil {
		return nil, err
	}
	heat, err := matrixPlot(spec.Heatmap, blueRedPalette(spec.Heatmap))
	if err != nil {
		return nil, err
	}
	featureDend, err := dendrogramPlot(spec.FeatureTree, spec.FeatureOrder)
	if err != nil {
		return nil, err
	}

	rows := [][]*plot.Plot{{nil, sampleDend}}
	if spec.Mutations.Values != nil {
		p, err := matrixPlot(spec.Mutations.Values, blackWhitePalette{})
		if err != nil {
			return nil, err
		}
		rows = append(rows, []*plot.Plot{nil, p})
	}
	if spec.CNVs.Values != nil {
		p, err := matrixPlot(spec.CNVs.Values, blueRedPalette(spec.CNVs.Values))
		if err != nil {
			return nil, err
		}
		rows = append(rows, []*plot.Plot{nil, p})
	}
	rows = append(rows, []*plot.Plot{featureDend, heat})
	return rows, nil
}

// matrixGrid adapts a dense matrix to the heatmap grid interface.
type matrixGrid struct {
	m *mat.Dense
}

func (g matrixGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}
func (g matrixGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

func matrixPlot(m *mat.Dense, pal palette.Palette) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.HideAxes()
	p.Add(plotter.NewHeatMap(matrixGrid{m: m}, pal))
	return p, nil
}

// blueRedPalette builds a diverging palette spanning the matrix values.
func blueRedPalette(m *mat.Dense) palette.Palette {
	min, max := mat.Min(m), mat.Max(m)
	if !(min < max) {
		min, max = min-1, min+1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(min)
	cm.SetMax(max)
	return cm.Palette(255)
}

// blackWhitePalette renders 0/1 mutation calls the way the original track
// colormap does.
type blackWhitePalette struct{}

func (blackWhitePalette) Colors() []color.Color {
	return []color.Color{color.Black, color.White}
}

// dendrogramPlot draws a tree as line segments: each merge contributes a
// bracket whose verticals sit at the mean leaf position of the merged
// clusters and whose horizontal sits at the merge height.
func dendrogramPlot(tree *clustering.Dendrogram, leafOrder []int) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.HideAxes()

	pos := make([]float64, tree.Len())
	for i, leaf := range leafOrder {
		pos[leaf] = float64(i)
	}

	// x and h track the horizontal position and height of every cluster id.
	n := tree.Len()
	x := make([]float64, n+len(tree.Merges()))
	h := make([]float64, n+len(tree.Merges()))
	for i := 0; i < n; i++ {
		x[i] = pos[i]
	}
	for step, m := range tree.Merges() {
		id := n + step
		x[id] = (x[m.Left] + x[m.Right]) / 2
		h[id] = m.Distance
		segs := plotter.XYs{
			{X: x[m.Left], Y: h[m.Left]},
			{X: x[m.Left], Y: m.Distance},
			{X: x[m.Right], Y: m.Distance},
			{X: x[m.Right], Y: h[m.Right]},
		}
		line, err := plotter.NewLine(segs)
		if err != nil {
			return nil, err
		}
		p.Add(line)
	}
	return p, nil
}
