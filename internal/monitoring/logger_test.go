package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	defer SetLogger(nil)

	Logf("rollup %s done", "2026-06-01")
	if got != "rollup 2026-06-01 done" {
		t.Errorf("captured %q", got)
	}
}

func TestSetLoggerNilInstallsNoop(t *testing.T) {
	SetLogger(nil)
	// Must not panic.
	Logf("ignored %d", 1)
}
