// Command analyze runs a one-shot analysis over a daily observations
// CSV: clean the series, derive movement and activity metrics, and
// write the hourly/daily summary files plus an optional PNG chart.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/csvio"
	"github.com/banshee-data/activity.report/internal/fsutil"
	"github.com/banshee-data/activity.report/internal/insect/pipeline"
	"github.com/banshee-data/activity.report/internal/report"
	"github.com/banshee-data/activity.report/internal/security"
)

var (
	inputFile  = flag.String("input", "", "Daily observations CSV to analyze (required)")
	outputDir  = flag.String("out", ".", "Directory for summary outputs")
	configFile = flag.String("config", "", "Path to a tuning JSON file (defaults apply when empty)")
	dateFlag   = flag.String("date", "", "Day to analyze as YYYY-MM-DD (default: inferred from first record)")
	plotFlag   = flag.Bool("plot", false, "Also render a PNG activity chart")
)

func main() {
	flag.Parse()
	if *inputFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		loaded, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	fs := fsutil.OSFileSystem{}
	records, diags, err := csvio.ReadObservationsFile(fs, *inputFile)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *inputFile, err)
	}
	for _, d := range diags {
		log.Printf("[%s/%s] %s", d.Level, d.Component, d.Message)
	}
	if len(records) == 0 {
		log.Fatalf("no usable records in %s", *inputFile)
	}

	day := records[0].Timestamp.In(cfg.GetLocation())
	if *dateFlag != "" {
		day, err = time.ParseInLocation("2006-01-02", *dateFlag, cfg.GetLocation())
		if err != nil {
			log.Fatalf("invalid -date: %v", err)
		}
	}

	res := pipeline.Run(day, records, cfg)
	for _, d := range res.Diagnostics {
		log.Printf("[%s/%s] %s", d.Level, d.Component, d.Message)
	}

	hourlyPath := filepath.Join(*outputDir, fmt.Sprintf("hourly_%s.csv", res.Date))
	if err := writeCSV(fs, hourlyPath, func(w io.Writer) error {
		return csvio.WriteHourlySummaries(w, res.Daily.Hours)
	}); err != nil {
		log.Fatalf("failed to write hourly summaries: %v", err)
	}

	dailyPath := filepath.Join(*outputDir, fmt.Sprintf("daily_%s.csv", res.Date))
	if err := writeCSV(fs, dailyPath, func(w io.Writer) error {
		return csvio.WriteDailySummary(w, res.Daily)
	}); err != nil {
		log.Fatalf("failed to write daily summary: %v", err)
	}

	if len(res.Normalized) > 0 {
		normPath := filepath.Join(*outputDir, fmt.Sprintf("normalized_%s.csv", res.Date))
		if err := security.ValidateExportPath(normPath); err != nil {
			log.Fatalf("refusing to write normalized series: %v", err)
		}
		if err := csvio.WriteObservationsFile(fs, normPath, res.Normalized); err != nil {
			log.Fatalf("failed to write normalized series: %v", err)
		}
		log.Printf("wrote %s", normPath)
	}

	if *plotFlag {
		plotPath := filepath.Join(*outputDir, fmt.Sprintf("activity_%s.png", res.Date))
		if err := security.ValidateExportPath(plotPath); err != nil {
			log.Fatalf("refusing to write chart: %v", err)
		}
		if err := report.RenderDailyActivity(plotPath, res.Daily); err != nil {
			log.Fatalf("failed to render chart: %v", err)
		}
		log.Printf("wrote %s", plotPath)
	}

	m := res.Metrics
	fmt.Printf("Date:                 %s (run %s)\n", res.Date, res.RunID)
	fmt.Printf("Detections:           %d\n", m.TotalDetections)
	fmt.Printf("Movement:             %.1f px (%.2f px/detection)\n", m.TotalMovementPx, m.AvgMovementPerDetect)
	fmt.Printf("Peak hour:            %02d:00\n", m.PeakActivityHour)
	fmt.Printf("Active duration:      %.1f min\n", m.ActiveDurationMinutes)
	fmt.Printf("Reliability:          %.3f\n", m.DetectionReliability)
	fmt.Printf("Completeness:         %.3f\n", m.DataCompleteness)
	log.Printf("wrote %s and %s", hourlyPath, dailyPath)
}

func writeCSV(fs fsutil.FileSystem, path string, write func(io.Writer) error) error {
	if err := security.ValidateExportPath(path); err != nil {
		return err
	}
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
