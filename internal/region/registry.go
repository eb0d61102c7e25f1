package region

import (
	"fmt"
	"math"
	"sort"
)

const (
	Ellipse = "ellipse"
	Diamond = "diamond"
)

type entry struct {
	formula  string
	field    Field
	maxValue float64
}

// registry holds the built-in regions. Diamond has an analytically known
// exit time and is used to validate the crossing refinement.
var registry = map[string]entry{
	Ellipse: {
		formula: "((x-2.5)/30)^2 + ((y-2.5)/40)^2 < 1",
		field: func(x, y float64) float64 {
			dx := (x - 2.5) / 30
			dy := (y - 2.5) / 40
			return dx*dx + dy*dy
		},
		maxValue: 1,
	},
	Diamond: {
		formula: "|x+y| + |x-y| < 40",
		field: func(x, y float64) float64 {
			return math.Abs(x+y) + math.Abs(x-y)
		},
		maxValue: 40,
	},
}

// Get builds the named built-in region.
func Get(name string) (*Region, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRegionUnknown, name)
	}

	r, err := New(name, s.field, s.maxValue)
	if err != nil {
		return nil, err
	}
	r.formula = s.formula
	return r, nil
}

// Names returns all registered region names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
