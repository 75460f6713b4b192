package insect

import "fmt"

// ValidationError reports a single malformed detection or record. The
// offending item is skipped and the rest of the cycle continues; these
// never abort a run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports an invalid pipeline parameter. Fatal at
// load time: the pipeline does not run with a bad configuration.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Param, e.Reason)
}

// PersistenceError wraps an I/O failure reading or writing the tabular
// format. Surfaced unchanged to the caller; retry policy belongs to the
// scheduler, not the pipeline.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Diagnostic is a recovered item-level problem surfaced alongside a
// successful result.
type Diagnostic struct {
	Level     string `json:"level"` // "warn" or "error"
	Component string `json:"component"`
	Message   string `json:"message"`
}

const (
	LevelWarn  = "warn"
	LevelError = "error"
)

// Warnf builds a warn-level diagnostic.
func Warnf(component, format string, args ...any) Diagnostic {
	return Diagnostic{Level: LevelWarn, Component: component, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error-level diagnostic.
func Errorf(component, format string, args ...any) Diagnostic {
	return Diagnostic{Level: LevelError, Component: component, Message: fmt.Sprintf(format, args...)}
}
