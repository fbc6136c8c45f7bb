// Package safe runs functions so that a panic becomes an error instead of
// taking the whole process down.
package safe

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned by Run when fn panicked
type PanicError struct {
	Value interface{}
	Stack []byte
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Run calls fn and converts a panic into a *PanicError
func Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
