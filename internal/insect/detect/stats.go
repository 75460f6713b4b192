package detect

import (
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/activity.report/internal/monitoring"
)

// Stats tracks filter counters with thread-safe operations. It is the
// only cross-invocation mutable state in the detection stage, so it is
// passed in explicitly rather than held at package level.
type Stats struct {
	mu            sync.Mutex
	processed     int64
	invalid       int64
	lowConfidence int64
	badSize       int64
	duplicates    int64
	kept          int64
	lastReset     time.Time
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{lastReset: time.Now()}
}

func (s *Stats) addProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
}

func (s *Stats) addInvalid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalid++
}

func (s *Stats) addLowConfidence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lowConfidence++
}

func (s *Stats) addBadSize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badSize++
}

func (s *Stats) addDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates++
}

func (s *Stats) addKept(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kept += int64(n)
}

// Snapshot holds one read of the counters.
type Snapshot struct {
	Processed     int64         `json:"processed"`
	Invalid       int64         `json:"invalid"`
	LowConfidence int64         `json:"low_confidence"`
	BadSize       int64         `json:"bad_size"`
	Duplicates    int64         `json:"duplicates"`
	Kept          int64         `json:"kept"`
	Duration      time.Duration `json:"duration"`
}

// GetAndReset returns current counters and resets them.
func (s *Stats) GetAndReset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	snap := Snapshot{
		Processed:     s.processed,
		Invalid:       s.invalid,
		LowConfidence: s.lowConfidence,
		BadSize:       s.badSize,
		Duplicates:    s.duplicates,
		Kept:          s.kept,
		Duration:      now.Sub(s.lastReset),
	}

	s.processed = 0
	s.invalid = 0
	s.lowConfidence = 0
	s.badSize = 0
	s.duplicates = 0
	s.kept = 0
	s.lastReset = now

	return snap
}

// LogStats logs a formatted summary of the counters and resets them.
func (s *Stats) LogStats() {
	snap := s.GetAndReset()
	if snap.Processed == 0 {
		return
	}
	msg := fmt.Sprintf("Detect stats: %d processed, %d kept, %d low-confidence, %d bad-size, %d duplicates",
		snap.Processed, snap.Kept, snap.LowConfidence, snap.BadSize, snap.Duplicates)
	if snap.Invalid > 0 {
		msg += fmt.Sprintf(", %d invalid", snap.Invalid)
	}
	monitoring.Logf("%s", msg)
}
