package depth

import "github.com/pkg/errors"

// Range bounds the depth values accepted from a sensor. Min is strictly
// positive to exclude self-occlusion readings right at the lens.
type Range struct {
	Min float64 `json:"min_m"`
	Max float64 `json:"max_m"`
}

// DefaultRange covers typical indoor environment-depth sensors.
func DefaultRange() Range {
	return Range{Min: 0.1, Max: 5.0}
}

// NewRange returns a validated Range.
func NewRange(min, max float64) (Range, error) {
	r := Range{Min: min, Max: max}
	return r, r.CheckValid()
}

// CheckValid checks if the fields of Range have valid inputs.
func (r Range) CheckValid() error {
	if r.Min <= 0 {
		return errors.Errorf("min depth must be > 0, got %v", r.Min)
	}
	if r.Max <= r.Min {
		return errors.Errorf("max depth %v must be greater than min depth %v", r.Max, r.Min)
	}
	return nil
}

// Contains reports whether d is a valid sample inside the range.
func (r Range) Contains(d Depth) bool {
	return d.IsValid() && float64(d) >= r.Min && float64(d) <= r.Max
}
