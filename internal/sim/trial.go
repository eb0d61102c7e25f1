// Package sim runs random-walk exit-time trials and aggregates them.
package sim

import (
	"fmt"
	"math"

	"github.com/MJE43/antwalk/internal/region"
	"github.com/MJE43/antwalk/internal/walker"
)

// Params are the physical constants shared by every trial in a batch.
type Params struct {
	StepSize       float64 `json:"step_size"`
	SecondsPerStep float64 `json:"seconds_per_step"`
	Precision      float64 `json:"precision"`
	MaxSteps       int     `json:"max_steps"`
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		StepSize:       10,
		SecondsPerStep: 1,
		Precision:      0.01,
		MaxSteps:       1_000_000,
	}
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	switch {
	case !(p.StepSize > 0) || math.IsInf(p.StepSize, 0):
		return fmt.Errorf("%w: step size must be positive, got %g", ErrInvalidParams, p.StepSize)
	case !(p.SecondsPerStep > 0) || math.IsInf(p.SecondsPerStep, 0):
		return fmt.Errorf("%w: seconds per step must be positive, got %g", ErrInvalidParams, p.SecondsPerStep)
	case !(p.Precision > 0):
		return fmt.Errorf("%w: precision must be positive, got %g", ErrInvalidParams, p.Precision)
	case p.Precision > p.StepSize:
		return fmt.Errorf("%w: precision %g exceeds step size %g", ErrInvalidParams, p.Precision, p.StepSize)
	case p.MaxSteps <= 0:
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalidParams, p.MaxSteps)
	}
	return nil
}

// refineLimit is the worst-case number of increments needed to cross one
// full step, plus the starting sample.
func (p Params) refineLimit() int {
	return int(math.Ceil(p.StepSize/p.Precision)) + 1
}

// Crossing is the refined location where a walk left the region.
type Crossing struct {
	PrevX, PrevY   float64 // last lattice point inside
	CrossX, CrossY float64 // first refined sample outside
	DirX, DirY     float64
	Iterations     int
}

// Distance is how far along the final step the crossing was found.
func (c Crossing) Distance() float64 {
	return math.Max(math.Abs(c.CrossX-c.PrevX), math.Abs(c.CrossY-c.PrevY))
}

// Outcome is the result of a completed trial.
type Outcome struct {
	Time     float64
	Steps    int
	Crossing Crossing
}

// RunTrial walks w from the origin until it leaves r, refines the crossing
// and returns the time estimate.
func RunTrial(r *region.Region, w *walker.Walker, p Params) (Outcome, error) {
	if !r.IsInside(w.X, w.Y) {
		return Outcome{}, ErrStartOutside
	}

	prevX, prevY := w.X, w.Y
	for r.IsInside(w.X, w.Y) {
		if w.Steps >= p.MaxSteps {
			return Outcome{Steps: w.Steps}, ErrStepBudgetExceeded
		}
		prevX, prevY = w.X, w.Y
		w.Step()
	}

	dirX, dirY, err := crossingDirection(w.X-prevX, w.Y-prevY)
	if err != nil {
		return Outcome{Steps: w.Steps}, err
	}

	c, err := Refine(r, prevX, prevY, dirX, dirY, p)
	if err != nil {
		return Outcome{Steps: w.Steps}, err
	}

	return Outcome{
		Time:     Estimate(w.Elapsed, c, p),
		Steps:    w.Steps,
		Crossing: c,
	}, nil
}

// crossingDirection reduces the final step to its unit direction. Exactly
// one axis may change per step.
func crossingDirection(dx, dy float64) (float64, float64, error) {
	sx, sy := sign(dx), sign(dy)
	if (sx == 0) == (sy == 0) {
		return 0, 0, fmt.Errorf("%w: delta (%g, %g)", ErrNoCrossingDirection, dx, dy)
	}
	return sx, sy, nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Refine searches from the inside point (prevX, prevY) along (dirX, dirY) in
// Precision increments and stops at the first sample outside r. The last
// inside sample is one increment behind the returned crossing.
func Refine(r *region.Region, prevX, prevY, dirX, dirY float64, p Params) (Crossing, error) {
	c := Crossing{PrevX: prevX, PrevY: prevY, DirX: dirX, DirY: dirY}
	limit := p.refineLimit()

	x, y := prevX, prevY
	for k := 0; ; k++ {
		if !r.IsInside(x, y) {
			c.CrossX, c.CrossY = x, y
			c.Iterations = k
			return c, nil
		}
		if k >= limit {
			return c, fmt.Errorf("%w: %d increments of %g from (%g, %g)",
				ErrRefinementBudgetExceeded, k, p.Precision, prevX, prevY)
		}
		x += p.Precision * dirX
		y += p.Precision * dirY
	}
}

// Estimate converts a walk's elapsed time and refined crossing into a
// crossing time. The final step is charged only up to the crossing, with
// half an increment added for the overshoot of the search.
func Estimate(elapsed float64, c Crossing, p Params) float64 {
	beforeFinal := elapsed - p.SecondsPerStep
	partial := p.SecondsPerStep * c.Distance() / p.StepSize
	correction := 0.5 * p.Precision * p.SecondsPerStep
	return beforeFinal + partial + correction
}
