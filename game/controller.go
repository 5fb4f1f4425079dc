package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrControllerFailure is wrapped by every error a controller causes during a tick.
var ErrControllerFailure = errors.New("controller failure")

// ErrMalformedOutput marks controller output that is empty or not finite.
var ErrMalformedOutput = fmt.Errorf("%w: malformed output", ErrControllerFailure)

// Controller decides whether an agent jumps.
// Inputs are [y, |y - gap top|, |y - gap bottom|] for the nearest obstacle
// ahead. Only the first output is read.
type Controller interface {
	Decide(inputs []float64) ([]float64, error)
}

// ControllerFunc adapts a plain function to the Controller interface.
type ControllerFunc func(inputs []float64) ([]float64, error)

// Decide calls f.
func (f ControllerFunc) Decide(inputs []float64) ([]float64, error) {
	return f(inputs)
}

// safeDecide queries c and converts errors, panics and malformed output
// into an error wrapping ErrControllerFailure.
func safeDecide(c Controller, inputs []float64) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: panic: %v", ErrControllerFailure, r)
		}
	}()

	out, err = c.Decide(inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrControllerFailure, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no outputs", ErrMalformedOutput)
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: output[%d] = %v", ErrMalformedOutput, i, v)
		}
	}
	return out, nil
}
