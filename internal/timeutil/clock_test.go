package timeutil

import (
	"testing"
	"time"
)

func TestMockClockNowAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clock.Now(), start)
	}

	later := start.Add(time.Hour)
	clock.Set(later)
	if !clock.Now().Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", clock.Now(), later)
	}
}

func TestMockClockSince(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.Advance(90 * time.Second)

	if got := clock.Since(start); got != 90*time.Second {
		t.Errorf("Since = %v, want 90s", got)
	}
}

func TestMockTickerFiresOnAdvance(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	ticker := clock.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	select {
	case <-ticker.C():
		t.Fatal("ticker fired before its period elapsed")
	default:
	}

	clock.Advance(15 * time.Minute)
	select {
	case tick := <-ticker.C():
		if !tick.Equal(start.Add(15 * time.Minute)) {
			t.Errorf("tick at %v, want %v", tick, start.Add(15*time.Minute))
		}
	default:
		t.Fatal("ticker did not fire after one period")
	}
}

func TestMockTickerStop(t *testing.T) {
	t.Parallel()

	clock := NewMockClock(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	ticker := clock.NewTicker(time.Minute)
	ticker.Stop()

	clock.Advance(5 * time.Minute)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestRealClock(t *testing.T) {
	t.Parallel()

	var clock Clock = RealClock{}
	before := time.Now()
	now := clock.Now()
	if now.Before(before) {
		t.Error("RealClock.Now went backwards")
	}
}
