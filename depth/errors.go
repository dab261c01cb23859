package depth

import "github.com/pkg/errors"

// ErrNoDepthData is when there is no depth frame available to sample.
var ErrNoDepthData = errors.New("no depth data available")

// NewNoDepthDataError is used when a depth map is absent or empty.
func NewNoDepthDataError(msg string) error {
	return errors.Wrap(ErrNoDepthData, msg)
}
