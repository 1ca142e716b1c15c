package report

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna-data/habimap/internal/eval"
	"github.com/calluna-data/habimap/internal/explain"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

func reportData() Data {
	def := raster.Definition{Ncols: 5, Nrows: 4, Xll: 10, Yll: 50, Cellsize: 0.5, Nodata: -9999}
	b := raster.NewBand("suitability", def)
	for i := range b.Values {
		b.Values[i] = float64(i) / float64(len(b.Values))
	}
	b.Set(0, 0, def.Nodata)

	return Data{
		Species:     "Carduelis carduelis",
		Suitability: b,
		Presences:   []sample.Point{{Lon: 10.25, Lat: 50.25}},
		Absences:    []sample.Point{{Lon: 11.75, Lat: 51.25}},
		Best:        eval.ThresholdPoint{Threshold: 0.45, Correlation: 0.61},
		Curve: []eval.ThresholdPoint{
			{Threshold: 0.3, Correlation: 0.4, TSS: 0.3, Kappa: 0.3, Accuracy: 0.6},
			{Threshold: 0.45, Correlation: 0.61, TSS: 0.5, Kappa: 0.45, Accuracy: 0.7},
			{Threshold: 0.6, Correlation: 0.5, TSS: 0.4, Kappa: 0.4, Accuracy: 0.65},
		},
		Responses: []*explain.Curve{
			{VarName: "temp", X: []float64{0, 1, 2}, Y: []float64{0.2, 0.5, 0.8}},
		},
		VarNames:   []string{"temp", "precip"},
		Importance: []float64{0.7, 0.2},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, Render(path, reportData()))

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(html)
	assert.Contains(t, body, "Carduelis carduelis")
	assert.Contains(t, body, "Threshold sweep")
	assert.Contains(t, body, "Partial response: temp")
	assert.Contains(t, body, "echarts")
}

func TestRender_SparseData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.html")

	// only the species name and importance, no map or curves
	d := Data{
		Species:    "Carduelis carduelis",
		VarNames:   []string{"temp"},
		Importance: []float64{1},
	}
	require.NoError(t, Render(path, d))

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Variable importance")
}

func TestServe(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.html"), []byte("<html>hello</html>"), 0o644))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, addr, dir)
	}()

	// wait for the server to come up
	url := fmt.Sprintf("http://%s/report.html", addr)
	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get(url)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "hello")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
