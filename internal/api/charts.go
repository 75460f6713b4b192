package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/activity.report/internal/httputil"
)

// handleActivityChart renders an HTML bar chart of the day's hourly
// detections and movement using go-echarts. Debugging surface only: the
// durable outputs are the CSV/PNG reports.
func (s *Server) handleActivityChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	date, _, err := s.dateParam(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	hours, err := s.hourlyOrEmpty(r.Context(), date)
	if err != nil {
		httputil.InternalServerError(w,
			fmt.Sprintf("failed to retrieve hourly summaries: %v", err))
		return
	}

	x := make([]string, 0, len(hours))
	detections := make([]opts.BarData, 0, len(hours))
	movement := make([]opts.BarData, 0, len(hours))
	for _, h := range hours {
		x = append(x, strconv.Itoa(h.Hour))
		detections = append(detections, opts.BarData{Value: h.Detections})
		movement = append(movement, opts.BarData{Value: h.MovementPx})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Insect Activity", Subtitle: date}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("detections", detections,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("movement px", movement)

	page := components.NewPage()
	page.AddCharts(bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
