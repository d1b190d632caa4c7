package internal

import "fmt"

// NoActiveSessionError indicates an operation that needs a live session
// was called without one. Recoverable: start or resume a session.
type NoActiveSessionError struct {
	Op string
}

func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("no active session for %s: start or resume a session first", e.Op)
}

// InvalidStateError indicates a lifecycle violation, such as ending a
// session that already ended.
type InvalidStateError struct {
	SessionID string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state [%s]: %s", e.SessionID, e.Reason)
}

// ParseError represents a malformed line in a canonical session log.
// Canonical logs must never be silently skipped on parse failure.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents a failed filesystem operation during persistence
type IOError struct {
	Op   string // "open", "write", "append", "rename", "read"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedAdapterError indicates an unknown adapter name; ingestion
// aborts before any write.
type UnsupportedAdapterError struct {
	Name  string
	Known []string
}

func (e *UnsupportedAdapterError) Error() string {
	return fmt.Sprintf("unsupported adapter %q (known: %v)", e.Name, e.Known)
}

// ValidationError represents a malformed field in an event or payload
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Reason)
}

// AdapterError represents a failure inside an adapter's Parse
type AdapterError struct {
	Adapter string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter error [%s]: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
