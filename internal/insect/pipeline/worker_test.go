package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/timeutil"
)

// fakeStore records saved results and can fail on demand.
type fakeStore struct {
	mu      sync.Mutex
	records []insect.ObservationRecord
	saved   []*Result
	loadErr error
	saveErr error
	savedCh chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{savedCh: make(chan struct{}, 16)}
}

func (s *fakeStore) ObservationsForDay(_ context.Context, _ time.Time, _ *time.Location) ([]insect.ObservationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.records, nil
}

func (s *fakeStore) SaveRunResult(_ context.Context, res *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, res)
	select {
	case s.savedCh <- struct{}{}:
	default:
	}
	return nil
}

func (s *fakeStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func TestWorkerRunDay(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.records = sampleDay()
	w := pipelineWorker(store)

	if err := w.RunDay(context.Background(), day); err != nil {
		t.Fatalf("RunDay: %v", err)
	}
	if store.savedCount() != 1 {
		t.Fatalf("saved %d results, want 1", store.savedCount())
	}
	store.mu.Lock()
	res := store.saved[0]
	store.mu.Unlock()
	if res.Date != "2026-06-01" || len(res.Daily.Hours) != 24 {
		t.Errorf("unexpected saved result: date %q, %d hours", res.Date, len(res.Daily.Hours))
	}
}

func TestWorkerWrapsStoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("load failure", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.loadErr = errors.New("disk gone")
		w := pipelineWorker(store)

		err := w.RunDay(context.Background(), day)
		var perr *insect.PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("error %v is not a PersistenceError", err)
		}
		if !errors.Is(err, store.loadErr) {
			t.Error("underlying error not wrapped")
		}
		if store.savedCount() != 0 {
			t.Error("a failed run must save nothing")
		}
	})

	t.Run("save failure", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.saveErr = errors.New("tx aborted")
		w := pipelineWorker(store)

		err := w.RunDay(context.Background(), day)
		var perr *insect.PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("error %v is not a PersistenceError", err)
		}
	})
}

func TestWorkerTickerLoop(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.records = sampleDay()
	clock := timeutil.NewMockClock(day.Add(12 * time.Hour))

	w := pipelineWorker(store)
	w.Clock = clock
	w.Start()
	defer w.Stop()

	clock.Advance(15 * time.Minute)
	select {
	case <-store.savedCh:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not run after one rollup interval")
	}

	clock.Advance(15 * time.Minute)
	select {
	case <-store.savedCh:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not run after the second interval")
	}
}

func pipelineWorker(store Store) *RollupWorker {
	return NewRollupWorker(store, config.EmptyTuningConfig())
}
