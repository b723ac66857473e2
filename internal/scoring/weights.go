// Package scoring computes a weighted fit report from job-side and CV-side skill sets.
package scoring

import (
	"math"
	"strings"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// weightTolerance is the allowed deviation of a weight total from 100.
const weightTolerance = 0.01

// CategoryWeight is the share of the overall score held by one category.
type CategoryWeight struct {
	Name   string  `json:"name" yaml:"name" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=100"`
}

// CategoryWeights is an ordered list of category weights. Report categories follow this order.
type CategoryWeights []CategoryWeight

// DefaultWeights puts the whole score on the default category.
func DefaultWeights() CategoryWeights {
	return CategoryWeights{{Name: types.DefaultCategory, Weight: 100}}
}

// DefaultModelWeights is the split used for model-extracted requirements.
func DefaultModelWeights() CategoryWeights {
	return CategoryWeights{
		{Name: types.CategoryCore, Weight: 60},
		{Name: types.CategoryTools, Weight: 40},
	}
}

// Total returns the sum of all weights.
func (w CategoryWeights) Total() float64 {
	total := 0.0
	for _, cw := range w {
		total += cw.Weight
	}
	return total
}

// Weight returns the weight of the named category.
func (w CategoryWeights) Weight(name string) (float64, bool) {
	for _, cw := range w {
		if cw.Name == name {
			return cw.Weight, true
		}
	}
	return 0, false
}

// Names returns category names in order.
func (w CategoryWeights) Names() []string {
	names := make([]string, len(w))
	for i, cw := range w {
		names[i] = cw.Name
	}
	return names
}

// Validate checks that weights are named, unique, non-negative and sum to 100.
// Weights are never renormalized.
func (w CategoryWeights) Validate() error {
	if len(w) == 0 {
		return types.NewInvalidConfiguration("weights", "at least one category weight is required")
	}
	seen := make(map[string]struct{}, len(w))
	for _, cw := range w {
		name := strings.TrimSpace(cw.Name)
		if name == "" {
			return types.NewInvalidConfiguration("weights", "category name is required")
		}
		if _, dup := seen[name]; dup {
			return types.NewInvalidConfiguration("weights", "duplicate category %q", name)
		}
		seen[name] = struct{}{}
		if cw.Weight < 0 || math.IsNaN(cw.Weight) || math.IsInf(cw.Weight, 0) {
			return types.NewInvalidConfiguration("weights", "category %q has invalid weight %v", name, cw.Weight)
		}
	}
	if total := w.Total(); math.Abs(total-100) > weightTolerance {
		return types.NewInvalidConfiguration("weights", "category weights sum to %.2f, must sum to 100", total)
	}
	return nil
}
