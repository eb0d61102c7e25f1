// Package region defines the bounded areas a walker is confined to.
//
// A Region is the set of points where a scalar field stays strictly below a
// threshold. Regions are immutable once built and safe to share between
// goroutines.
package region

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidField  = errors.New("invalid region field")
	ErrRegionUnknown = errors.New("region not found")
)

// Field is a scalar function of a point. It must be total over the reals.
type Field func(x, y float64) float64

// Region reports whether points lie inside Field < MaxValue.
type Region struct {
	name     string
	formula  string
	field    Field
	maxValue float64
}

// New builds a region and probes the field once at the origin.
func New(name string, field Field, maxValue float64) (*Region, error) {
	if field == nil {
		return nil, fmt.Errorf("%w: %s: nil field", ErrInvalidField, name)
	}
	if math.IsNaN(maxValue) {
		return nil, fmt.Errorf("%w: %s: max value is NaN", ErrInvalidField, name)
	}

	r := &Region{name: name, field: field, maxValue: maxValue}
	if _, err := r.Eval(0, 0); err != nil {
		return nil, err
	}
	return r, nil
}

// Name returns the registry identifier of the region.
func (r *Region) Name() string { return r.name }

// Formula returns a human readable description of the boundary.
func (r *Region) Formula() string { return r.formula }

// MaxValue returns the threshold the field is compared against.
func (r *Region) MaxValue() float64 { return r.maxValue }

// IsInside reports whether field(x, y) < MaxValue.
func (r *Region) IsInside(x, y float64) bool {
	return r.field(x, y) < r.maxValue
}

// Eval evaluates the field at a point, converting panics and non-finite
// values into ErrInvalidField.
func (r *Region) Eval(x, y float64) (v float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s panicked at (%g, %g): %v", ErrInvalidField, r.name, x, y, rec)
		}
	}()

	v = r.field(x, y)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, fmt.Errorf("%w: %s is not finite at (%g, %g): %g", ErrInvalidField, r.name, x, y, v)
	}
	return v, nil
}
