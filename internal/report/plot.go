// Package report renders daily activity charts to PNG for offline
// reports.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/activity.report/internal/insect/activity"
)

// RenderDailyActivity saves a PNG with the hourly detection histogram
// and a movement line for one day.
func RenderDailyActivity(path string, daily activity.DailySummary) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Insect activity %s", daily.Date)
	p.X.Label.Text = "hour of day"
	p.Y.Label.Text = "detections"

	detections := make(plotter.Values, len(daily.Hours))
	movementPts := make(plotter.XYs, 0, len(daily.Hours))
	for i, h := range daily.Hours {
		detections[i] = float64(h.Detections)
		movementPts = append(movementPts, plotter.XY{X: float64(h.Hour), Y: h.MovementPx})
	}

	bars, err := plotter.NewBarChart(detections, vg.Points(12))
	if err != nil {
		return fmt.Errorf("failed to build detection bars: %w", err)
	}
	bars.LineStyle.Width = 0
	bars.Color = color.RGBA{R: 60, G: 120, B: 200, A: 255}
	p.Add(bars)
	p.Legend.Add("detections", bars)

	line, err := plotter.NewLine(movementPts)
	if err != nil {
		return fmt.Errorf("failed to build movement line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = color.RGBA{R: 200, G: 80, B: 60, A: 255}
	p.Add(line)
	p.Legend.Add("movement px", line)

	labels := make([]string, len(daily.Hours))
	for i, h := range daily.Hours {
		labels[i] = fmt.Sprintf("%02d", h.Hour)
	}
	p.NominalX(labels...)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save activity plot: %w", err)
	}
	return nil
}
