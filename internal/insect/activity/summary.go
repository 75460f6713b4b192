package activity

import (
	"time"

	"github.com/banshee-data/activity.report/internal/insect"
)

// HourlySummary is one rollup bucket keyed by (date, hour). A day
// always produces exactly 24 rows; hours with no observations emit zero
// counts so the daily shape stays deterministic for downstream readers.
type HourlySummary struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	Hour           int     `json:"hour"` // 0-23
	Observations   int     `json:"observations"`
	Detections     int     `json:"detections"`
	MovementPx     float64 `json:"movement_px"`
	MeanConfidence float64 `json:"mean_confidence"`
	MaxConfidence  float64 `json:"max_confidence"`
}

// DailySummary aggregates 24 hourly buckets plus directly-computed
// metrics for the day. Keyed by date.
type DailySummary struct {
	Date    string          `json:"date"`
	Metrics Metrics         `json:"metrics"`
	Hours   []HourlySummary `json:"hours"` // always len 24
}

// HourlySummaries buckets observations and movement samples by hour of
// day. Each movement is attributed to the hour its destination
// observation falls in.
func HourlySummaries(date string, records []insect.ObservationRecord, movements []Movement) []HourlySummary {
	out := make([]HourlySummary, 24)
	for h := range out {
		out[h] = HourlySummary{Date: date, Hour: h}
	}

	confSum := make([]float64, 24)
	confN := make([]int, 24)
	for i := range records {
		r := &records[i]
		h := r.Timestamp.Hour()
		out[h].Observations++
		if !r.Detected {
			continue
		}
		out[h].Detections++
		if r.MeanConfidence != nil {
			confSum[h] += *r.MeanConfidence
			confN[h]++
		}
		if r.MaxConfidence != nil && *r.MaxConfidence > out[h].MaxConfidence {
			out[h].MaxConfidence = *r.MaxConfidence
		}
	}
	for h := 0; h < 24; h++ {
		if confN[h] > 0 {
			out[h].MeanConfidence = confSum[h] / float64(confN[h])
		}
	}

	for _, m := range movements {
		out[m.To.Hour()].MovementPx += m.Distance
	}
	return out
}

// BuildDailySummary runs the full aggregation for one calendar day in
// the given location.
func BuildDailySummary(day time.Time, loc *time.Location, records []insect.ObservationRecord, movements []Movement, cfg Config) DailySummary {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	date := start.Format("2006-01-02")

	return DailySummary{
		Date:    date,
		Metrics: ComputeMetrics(records, movements, start, end, cfg),
		Hours:   HourlySummaries(date, records, movements),
	}
}
