// Package analysis holds side-channel observers over the generator's
// per-episode metrics. Observers never feed back into the run.
package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/grid-rl/trajgen/generator"
)

// ReturnPlotter accumulates episode returns and renders them as a line
// chart when the run finishes.
type ReturnPlotter struct {
	path    string
	returns []float64
}

var _ generator.Analyzer = &ReturnPlotter{}

func NewReturnPlotter(path string) *ReturnPlotter {
	return &ReturnPlotter{path: path}
}

func (r *ReturnPlotter) Analyze(episode int, metrics map[string]float64) {
	r.returns = append(r.returns, metrics["return"])
}

func (r *ReturnPlotter) Close() error {
	if len(r.returns) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Episode returns"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	points := make(plotter.XYs, len(r.returns))
	for i, v := range r.returns {
		points[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	return p.Save(8*vg.Inch, 8*vg.Inch, r.path)
}

// MeanLogger prints the running mean of every metric once the run finishes.
type MeanLogger struct {
	series map[string][]float64
}

var _ generator.Analyzer = &MeanLogger{}

func NewMeanLogger() *MeanLogger {
	return &MeanLogger{series: make(map[string][]float64)}
}

func (m *MeanLogger) Analyze(episode int, metrics map[string]float64) {
	for k, v := range metrics {
		m.series[k] = append(m.series[k], v)
	}
}

func (m *MeanLogger) Close() error {
	names := make([]string, 0, len(m.series))
	for k := range m.series {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := m.series[k]
		fmt.Printf("Mean %s over %d episodes: %.4f\n", k, len(v), stat.Mean(v, nil))
	}
	return nil
}
