package figures

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/calluna-data/habimap/internal/eval"
	"github.com/calluna-data/habimap/internal/explain"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

// bandGrid adapts a raster band to the plotter.GridXYZ interface. Nodata
// cells come out as NaN so the heatmap leaves them blank.
type bandGrid struct {
	b *raster.Band
}

func (g bandGrid) Dims() (c, r int) { return g.b.Def.Ncols, g.b.Def.Nrows }

func (g bandGrid) Z(c, r int) float64 {
	// plotter rows count up from the bottom; band rows from the top
	v := g.b.At(g.b.Def.Nrows-1-r, c)
	if g.b.Def.IsNodata(v) {
		return math.NaN()
	}
	return v
}

func (g bandGrid) X(c int) float64 {
	lon, _ := g.b.Def.CellCenter(0, c)
	return lon
}

func (g bandGrid) Y(r int) float64 {
	_, lat := g.b.Def.CellCenter(g.b.Def.Nrows-1-r, 0)
	return lat
}

func pointsXY(pts []sample.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.Lon, Y: p.Lat}
	}
	return xys
}

// MapPNG renders one band as a heatmap with presence and absence points
// overlaid. Either point set may be empty.
func MapPNG(b *raster.Band, presences, absences []sample.Point, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	hm := plotter.NewHeatMap(bandGrid{b}, Ramp{N: 64})
	p.Add(hm)

	if len(absences) > 0 {
		sc, err := plotter.NewScatter(pointsXY(absences))
		if err != nil {
			return fmt.Errorf("map figure: %w", err)
		}
		sc.GlyphStyle.Color = color.RGBA{A: 255}
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		p.Legend.Add("pseudo-absence", sc)
	}
	if len(presences) > 0 {
		sc, err := plotter.NewScatter(pointsXY(presences))
		if err != nil {
			return fmt.Errorf("map figure: %w", err)
		}
		sc.GlyphStyle.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add("presence", sc)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save map figure: %w", err)
	}
	return nil
}

// ThresholdCurvePNG plots the threshold sweep: one line per skill metric,
// with the chosen threshold called out in the title.
func ThresholdCurvePNG(curve []eval.ThresholdPoint, best eval.ThresholdPoint, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Threshold sweep (best %.2f, r=%.3f)", best.Threshold, best.Correlation)
	p.X.Label.Text = "Threshold"
	p.Y.Label.Text = "Skill"

	series := []struct {
		name string
		get  func(eval.ThresholdPoint) float64
	}{
		{"correlation", func(t eval.ThresholdPoint) float64 { return t.Correlation }},
		{"TSS", func(t eval.ThresholdPoint) float64 { return t.TSS }},
		{"kappa", func(t eval.ThresholdPoint) float64 { return t.Kappa }},
		{"accuracy", func(t eval.ThresholdPoint) float64 { return t.Accuracy }},
	}
	colors := LineColors(len(series))
	for i, s := range series {
		pts := make(plotter.XYs, len(curve))
		for j, t := range curve {
			pts[j] = plotter.XY{X: t.Threshold, Y: s.get(t)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("threshold figure: %w", err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save threshold figure: %w", err)
	}
	return nil
}

// PartialResponsePNG plots one partial-response curve.
func PartialResponsePNG(curve *explain.Curve, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Partial response: %s", curve.VarName)
	p.X.Label.Text = curve.VarName
	p.Y.Label.Text = "Predicted suitability"
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(curve.X))
	for i := range curve.X {
		pts[i] = plotter.XY{X: curve.X[i], Y: curve.Y[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("partial response figure: %w", err)
	}
	line.Width = vg.Points(1.5)
	p.Add(line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save partial response figure: %w", err)
	}
	return nil
}

// ImportancePNG renders a variable-importance bar chart.
func ImportancePNG(names []string, values []float64, title, path string) error {
	if len(names) != len(values) {
		return fmt.Errorf("importance figure: %d names for %d values", len(names), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Importance"

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(25))
	if err != nil {
		return fmt.Errorf("importance figure: %w", err)
	}
	bars.Color = LineColors(1)[0]
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save importance figure: %w", err)
	}
	return nil
}

// CVMetricsPNG plots per-fold skill at the given threshold, one line per
// metric over fold index.
func CVMetricsPNG(result *eval.CVResult, threshold float64, path string) error {
	if len(result.Folds) == 0 {
		return fmt.Errorf("cv figure: no folds")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Cross-validation skill at threshold %.2f", threshold)
	p.X.Label.Text = "Fold"
	p.Y.Label.Text = "Skill"

	series := []struct {
		name string
		get  func(eval.ConfusionMatrix) float64
	}{
		{"accuracy", eval.ConfusionMatrix.Accuracy},
		{"sensitivity", eval.ConfusionMatrix.Sensitivity},
		{"specificity", eval.ConfusionMatrix.Specificity},
		{"TSS", eval.ConfusionMatrix.TSS},
	}
	colors := LineColors(len(series))
	for i, s := range series {
		pts := make(plotter.XYs, len(result.Folds))
		for j, fold := range result.Folds {
			cm := eval.Confusion(fold.Probs, fold.Obs, threshold)
			pts[j] = plotter.XY{X: float64(fold.Fold), Y: s.get(cm)}
		}
		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("cv figure: %w", err)
		}
		line.Color = colors[i]
		scatter.Color = colors[i]
		p.Add(line, scatter)
		p.Legend.Add(s.name, line, scatter)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save cv figure: %w", err)
	}
	return nil
}
