// Package errdefs defines the error kinds shared by the geoprofile packages.
// Callers match them with errors.Is and pull details out with errors.As.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports a parameter rejected before any computation
	// (non-positive radius or step, negative sigma, ...).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDimensionMismatch reports paired rasters whose geometries differ.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrComputationFailure reports a fault inside a morphological operator.
	ErrComputationFailure = errors.New("computation failure")
)

// ParameterError names the offending parameter and its value verbatim.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// InvalidParameter returns a *ParameterError for name/value.
func InvalidParameter(name string, value any, reason string) error {
	return &ParameterError{Name: name, Value: value, Reason: reason}
}

// MismatchError describes two rasters that were expected to share a geometry.
type MismatchError struct {
	Op   string
	Want []int
	Got  []int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s: want size %v, got %v", e.Op, ErrDimensionMismatch, e.Want, e.Got)
}

func (e *MismatchError) Unwrap() error { return ErrDimensionMismatch }

// Mismatch returns a *MismatchError for op.
func Mismatch(op string, want, got []int) error {
	return &MismatchError{Op: op, Want: want, Got: got}
}

// Failure marks err as a computation failure of op. A nil err yields a bare
// failure carrying only the operation name.
func Failure(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrComputationFailure)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrComputationFailure, err)
}
