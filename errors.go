package linekv

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error types for specific failure scenarios
var (
	// ErrInvalidConfig indicates invalid configuration options
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClosed indicates the store has been closed
	ErrClosed = errors.New("store is closed")

	// ErrAlreadyStarted indicates Start was called more than once
	ErrAlreadyStarted = errors.New("store already started")
)

// ConnectionError represents a failure to bind the listening address
type ConnectionError struct {
	Addr string
	Err  error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the wrapped error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
