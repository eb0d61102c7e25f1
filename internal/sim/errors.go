package sim

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParams            = errors.New("invalid simulation parameters")
	ErrStartOutside             = errors.New("start point is outside the region")
	ErrStepBudgetExceeded       = errors.New("exceeded maximum steps")
	ErrRefinementBudgetExceeded = errors.New("crossing refinement did not leave the region")
	ErrNoCrossingDirection      = errors.New("crossing step did not move along exactly one axis")
	ErrNoCompletedTrials        = errors.New("no trial completed")
)

// TrialError records why a single trial produced no estimate.
type TrialError struct {
	Trial uint64
	Steps int
	Err   error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d after %d steps: %v", e.Trial, e.Steps, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }

var trialFailures = []error{
	ErrStartOutside,
	ErrStepBudgetExceeded,
	ErrRefinementBudgetExceeded,
	ErrNoCrossingDirection,
}

// Reason is the failure bucket the trial is counted under in a Summary.
func (e *TrialError) Reason() string {
	for _, sentinel := range trialFailures {
		if errors.Is(e.Err, sentinel) {
			return sentinel.Error()
		}
	}
	return e.Err.Error()
}

// IsInvariantViolation reports failures that indicate a bug rather than an
// unlucky walk.
func (e *TrialError) IsInvariantViolation() bool {
	return errors.Is(e.Err, ErrNoCrossingDirection)
}
