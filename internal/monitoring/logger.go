// Package monitoring holds the diagnostic logger used by the pipeline
// workers and detection stats reporters.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to
// log.Printf; tests can redirect or mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
