// Package api serves the activity metrics and summaries over HTTP.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/db"
	"github.com/banshee-data/activity.report/internal/httputil"
	"github.com/banshee-data/activity.report/internal/insect/activity"
	"github.com/banshee-data/activity.report/internal/units"
	"github.com/banshee-data/activity.report/internal/version"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Cap on the run-history page size.
const maxRunsLimit = 1000

type Server struct {
	db  *db.DB
	cfg *config.TuningConfig
}

func NewServer(database *db.DB, cfg *config.TuningConfig) *Server {
	return &Server{
		db:  database,
		cfg: cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/metrics", s.showDailyMetrics)
	mux.HandleFunc("/api/hourly", s.showHourlySummaries)
	mux.HandleFunc("/api/observations", s.listObservations)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/params", s.showParams)
	mux.HandleFunc("/api/timezones", s.listTimezones)
	mux.HandleFunc("/api/version", s.showVersion)
	mux.HandleFunc("/charts/activity", s.handleActivityChart)
	return mux
}

// dateParam resolves the ?date=YYYY-MM-DD query, defaulting to today in
// the configured timezone.
func (s *Server) dateParam(r *http.Request) (string, time.Time, error) {
	loc := s.cfg.GetLocation()
	d := r.URL.Query().Get("date")
	if d == "" {
		now := time.Now().In(loc)
		return now.Format("2006-01-02"), now, nil
	}
	day, err := time.ParseInLocation("2006-01-02", d, loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid 'date' parameter %q", d)
	}
	return d, day, nil
}

func (s *Server) showDailyMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	date, _, err := s.dateParam(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	metrics, err := s.db.DailySummaryForDate(r.Context(), date)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to retrieve daily metrics: %v", err))
		return
	}
	if metrics == nil {
		// No rollup yet for this date: the defined result is zeroes,
		// not an error.
		metrics = &activity.Metrics{}
	}

	httputil.WriteJSONOK(w, struct {
		Date    string           `json:"date"`
		Metrics activity.Metrics `json:"metrics"`
	}{date, *metrics})
}

func (s *Server) showHourlySummaries(w http.ResponseWriter, r *http.Request) {
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
		httputil.InternalServerError(w, fmt.Sprintf("failed to retrieve hourly summaries: %v", err))
		return
	}
	httputil.WriteJSONOK(w, hours)
}

// hourlyOrEmpty loads the stored hourly rows, substituting 24 zero rows
// when the date has no rollup so the response shape stays fixed.
func (s *Server) hourlyOrEmpty(ctx context.Context, date string) ([]activity.HourlySummary, error) {
	hours, err := s.db.HourlySummariesForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(hours) == 0 {
		hours = activity.HourlySummaries(date, nil, nil)
	}
	return hours, nil
}

func (s *Server) listObservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	_, day, err := s.dateParam(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	records, err := s.db.ObservationsForDay(r.Context(), day, s.cfg.GetLocation())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to retrieve observations: %v", err))
		return
	}
	httputil.WriteJSONOK(w, records)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		if parsed > maxRunsLimit {
			parsed = maxRunsLimit
		}
		limit = parsed
	}

	runs, err := s.db.RecentRuns(r.Context(), limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to retrieve runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) showParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.cfg)
}

// listTimezones returns the curated timezone list clients can offer when
// configuring the observation timezone.
func (s *Server) listTimezones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, struct {
		Configured string   `json:"configured"`
		Common     []string `json:"common"`
	}{s.cfg.GetTimezone(), units.CommonTimezones})
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, struct {
		Version   string `json:"version"`
		GitSHA    string `json:"git_sha"`
		BuildTime string `json:"build_time"`
	}{version.Version, version.GitSHA, version.BuildTime})
}
