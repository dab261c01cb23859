// Package depth provides storage and sampling for per-pixel depth buffers
// captured from an environment depth sensor.
package depth

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// Depth is a single metric depth sample in meters, measured along the sensor's
// view ray. Zero and NaN both mark a missing reading.
type Depth float64

// IsValid returns whether the sample is a real reading.
func (d Depth) IsValid() bool {
	f := float64(d)
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}

// Map is a dense width x height grid of depth samples, stored row-major.
type Map struct {
	width  int
	height int
	data   []Depth
}

// NewEmptyMap returns a Map of the given dimensions with every sample missing.
func NewEmptyMap(width, height int) *Map {
	return &Map{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// NewMapFromData wraps row-major samples in a Map.
func NewMapFromData(width, height int, data []Depth) (*Map, error) {
	if len(data) != width*height {
		return nil, errors.Errorf("data length %d does not match dimensions (%d,%d)", len(data), width, height)
	}
	return &Map{width: width, height: height, data: data}, nil
}

// HasData returns whether the map has a non-zero sample grid.
func (m *Map) HasData() bool {
	return m != nil && m.width > 0 && m.height > 0 && m.data != nil
}

// Width returns the horizontal dimension of the map.
func (m *Map) Width() int {
	return m.width
}

// Height returns the vertical dimension of the map.
func (m *Map) Height() int {
	return m.height
}

// Bounds returns the rectangle of valid pixel coordinates.
func (m *Map) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Get returns the depth at the given pixel.
func (m *Map) Get(p image.Point) Depth {
	return m.data[p.Y*m.width+p.X]
}

// GetDepth returns the depth at (x, y).
func (m *Map) GetDepth(x, y int) Depth {
	return m.data[y*m.width+x]
}

// Set writes the depth at (x, y).
func (m *Map) Set(x, y int, d Depth) {
	m.data[y*m.width+x] = d
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	data := make([]Depth, len(m.data))
	copy(data, m.data)
	return &Map{width: m.width, height: m.height, data: data}
}

// Iterate enumerates samples at the given stride and calls fn for each, in
// row-major order within a batch. Invalid samples are passed through; validity
// policy belongs to the caller. numBatches lets you divide up the work by
// interleaving strided rows. 0 means don't divide; myBatch is used iff
// numBatches > 0 and is which batch you want. If fn returns false, iteration
// of that batch stops.
func (m *Map) Iterate(stride, numBatches, myBatch int, fn func(x, y int, d Depth) bool) {
	if stride < 1 {
		stride = 1
	}
	row := 0
	for y := 0; y < m.height; y += stride {
		if numBatches > 0 && row%numBatches != myBatch {
			row++
			continue
		}
		row++
		for x := 0; x < m.width; x += stride {
			if !fn(x, y, m.data[y*m.width+x]) {
				return
			}
		}
	}
}
