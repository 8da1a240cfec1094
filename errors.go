package nscache

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned for any operation attempted before a successful
// Connect (or after Close). No backend I/O happens in that state.
var ErrNotConnected = errors.New("nscache: not connected")

// Op names a cache operation in errors, logs and hooks.
type Op string

const (
	OpSet   Op = "set"
	OpGet   Op = "get"
	OpDel   Op = "del"
	OpFlush Op = "flush"
)

// ConfigError reports a missing or invalid Config field. Fatal to Connect.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("nscache: invalid config %s: %s", e.Field, e.Reason)
}

// ConnectionError reports that the backend could not be reached or refused the
// handshake. Unwrap exposes the backend's own error.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("nscache: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// OperationError is a backend failure during set/get/del/flush. The sentinel
// returning methods swallow it (after logging and hooks); Lookup and the E
// variants hand it to the caller.
type OperationError struct {
	Op  Op
	Key string // storage key; for flush, the scanned namespace
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("nscache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
