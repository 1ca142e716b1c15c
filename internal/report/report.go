// Package report renders the lecture's interactive HTML report with
// go-echarts and serves the output directory for classroom presentation.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/calluna-data/habimap/internal/eval"
	"github.com/calluna-data/habimap/internal/explain"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

// Data is everything the report page shows.
type Data struct {
	Species     string
	Suitability *raster.Band
	Presences   []sample.Point
	Absences    []sample.Point
	Best        eval.ThresholdPoint
	Curve       []eval.ThresholdPoint
	Responses   []*explain.Curve
	VarNames    []string
	Importance  []float64
}

// maxMapPoints caps the suitability scatter to keep the page light.
const maxMapPoints = 8000

// Render writes the full report page to path.
func Render(path string, d Data) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Species distribution model: %s", d.Species)

	if d.Suitability != nil {
		page.AddCharts(suitabilityChart(d))
	}
	if len(d.Curve) > 0 {
		page.AddCharts(thresholdChart(d))
	}
	for _, c := range d.Responses {
		page.AddCharts(responseChart(c))
	}
	if len(d.Importance) > 0 {
		page.AddCharts(importanceChart(d))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report %s: %w", path, err)
	}
	return nil
}

// suitabilityChart draws the predicted suitability surface as a colored
// scatter of cell centers, downsampled by stride to stay within
// maxMapPoints, with occurrence points on top.
func suitabilityChart(d Data) *charts.Scatter {
	b := d.Suitability
	def := b.Def

	stride := 1
	if def.NumCells() > maxMapPoints {
		stride = def.NumCells()/maxMapPoints + 1
	}

	var data []opts.ScatterData
	for i := 0; i < def.NumCells(); i += stride {
		v := b.Values[i]
		if def.IsNodata(v) {
			continue
		}
		lon, lat := def.CellCenter(i/def.Ncols, i%def.Ncols)
		data = append(data, opts.ScatterData{Value: []interface{}{lon, lat, v}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Predicted suitability: %s", d.Species),
			Subtitle: fmt.Sprintf("cells=%d stride=%d", len(data), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("suitability", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	if len(d.Presences) > 0 {
		var pres []opts.ScatterData
		for _, p := range d.Presences {
			pres = append(pres, opts.ScatterData{Value: []interface{}{p.Lon, p.Lat, 1.0}})
		}
		scatter.AddSeries("presence", pres, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	return scatter
}

func thresholdChart(d Data) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Threshold sweep",
			Subtitle: fmt.Sprintf("best threshold %.2f (r=%.3f)", d.Best.Threshold, d.Best.Correlation),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Threshold"}),
	)

	var x []string
	var corr, tss, kappa []opts.LineData
	for _, t := range d.Curve {
		x = append(x, fmt.Sprintf("%.2f", t.Threshold))
		corr = append(corr, opts.LineData{Value: t.Correlation})
		tss = append(tss, opts.LineData{Value: t.TSS})
		kappa = append(kappa, opts.LineData{Value: t.Kappa})
	}
	line.SetXAxis(x).
		AddSeries("correlation", corr).
		AddSeries("TSS", tss).
		AddSeries("kappa", kappa)
	return line
}

func responseChart(c *explain.Curve) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Partial response: %s", c.VarName)}),
		charts.WithXAxisOpts(opts.XAxis{Name: c.VarName}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Suitability", Min: 0, Max: 1}),
	)

	var x []string
	var y []opts.LineData
	for i := range c.X {
		x = append(x, fmt.Sprintf("%.3g", c.X[i]))
		y = append(y, opts.LineData{Value: c.Y[i]})
	}
	line.SetXAxis(x).AddSeries(c.VarName, y)
	return line
}

func importanceChart(d Data) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Variable importance (mean |Shapley|)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var y []opts.BarData
	for _, v := range d.Importance {
		y = append(y, opts.BarData{Value: v})
	}
	bar.SetXAxis(d.VarNames).AddSeries("importance", y)
	return bar
}
