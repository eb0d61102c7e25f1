package sim

import "math"

// Summary contains aggregate statistics over the completed trials.
type Summary struct {
	Requested int            `json:"requested"`
	Evaluated uint64         `json:"evaluated"`
	Completed int            `json:"completed"`
	Skipped   int            `json:"skipped"`
	Failures  map[string]int `json:"failures,omitempty"`
	Mean      float64        `json:"mean"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	StdDev    float64        `json:"std_dev"`
	StdErr    float64        `json:"std_err"`
	TimedOut  bool           `json:"timed_out,omitempty"`
}

// Summarize computes the aggregate over times, which must be in trial order
// for the mean to be reproducible bit for bit.
func Summarize(times []float64, failures []TrialError) Summary {
	s := Summary{
		Completed: len(times),
		Skipped:   len(failures),
	}

	if len(failures) > 0 {
		s.Failures = make(map[string]int)
		for i := range failures {
			s.Failures[failures[i].Reason()]++
		}
	}

	if len(times) == 0 {
		return s
	}

	min, max, sum := times[0], times[0], 0.0
	for _, t := range times {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
		sum += t
	}

	n := float64(len(times))
	s.Min = min
	s.Max = max
	s.Mean = sum / n

	if len(times) > 1 {
		ss := 0.0
		for _, t := range times {
			d := t - s.Mean
			ss += d * d
		}
		s.StdDev = math.Sqrt(ss / (n - 1))
		s.StdErr = s.StdDev / math.Sqrt(n)
	}

	return s
}
