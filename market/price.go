package market

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned for an empty or inverted price range.
var ErrInvalidRange = errors.New("invalid price range")

// PriceRange is the global [Min, Max] band every price is clamped into.
type PriceRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Clamp pins p into the range. It is idempotent for in-range values and
// non-decreasing in p.
func (r PriceRange) Clamp(p float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, p))
}

// Contains reports whether p lies inside the range, both ends inclusive.
func (r PriceRange) Contains(p float64) bool {
	return p >= r.Min && p <= r.Max
}

// Width returns Max - Min.
func (r PriceRange) Width() float64 {
	return r.Max - r.Min
}

func (r PriceRange) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidRange)
	}
	if r.Min >= r.Max {
		return fmt.Errorf("%w: min %.4f must be below max %.4f", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}
