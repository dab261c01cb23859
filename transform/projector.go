package transform

import (
	"context"
	"image/color"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/depthcloud/depth"
	"go.viam.com/depthcloud/pointcloud"
	"go.viam.com/depthcloud/utils"
)

// ProjectorConfig controls which samples are projected and how they are colored.
type ProjectorConfig struct {
	// Stride skips every Nth pixel in each axis. 1 projects every pixel.
	Stride int
	Range  depth.Range
	Near   color.NRGBA
	Far    color.NRGBA
}

// DefaultProjectorConfig projects every pixel over the default range with the
// default gradient.
func DefaultProjectorConfig() ProjectorConfig {
	g := DefaultDepthGradient()
	return ProjectorConfig{Stride: 1, Range: g.Range, Near: g.Near, Far: g.Far}
}

// CheckValid checks if the fields for ProjectorConfig have valid inputs.
func (cfg ProjectorConfig) CheckValid() error {
	if cfg.Stride < 1 {
		return errors.Errorf("subsample stride must be >= 1, got %d", cfg.Stride)
	}
	return cfg.Range.CheckValid()
}

func (cfg ProjectorConfig) gradient() DepthGradient {
	return DepthGradient{Near: cfg.Near, Far: cfg.Far, Range: cfg.Range}
}

// Projector converts a DepthFrame into a colored world-space point cloud.
// Implementations must be pure with respect to the frame and produce points in
// row-major pixel order, so a serial and a parallel projector with the same
// config yield the same cloud.
type Projector interface {
	Project(ctx context.Context, frame *DepthFrame) (*pointcloud.PointCloud, error)
}

type serialProjector struct {
	cfg ProjectorConfig
}

// NewSerialProjector returns a Projector that runs on the calling goroutine.
func NewSerialProjector(cfg ProjectorConfig) (Projector, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, err
	}
	return &serialProjector{cfg: cfg}, nil
}

func (sp *serialProjector) Project(_ context.Context, frame *DepthFrame) (*pointcloud.PointCloud, error) {
	if err := frame.CheckValid(); err != nil {
		return nil, err
	}
	if frame.Pose == nil {
		return pointcloud.New(), ErrNoPose
	}
	gradient := sp.cfg.gradient()
	size := (frame.Depth.Width()/sp.cfg.Stride + 1) * (frame.Depth.Height()/sp.cfg.Stride + 1)
	pc := &pointcloud.PointCloud{
		Positions: make([]r3.Vector, 0, size),
		Colors:    make([]color.NRGBA, 0, size),
	}
	frame.Depth.Iterate(sp.cfg.Stride, 0, 0, func(x, y int, d depth.Depth) bool {
		if !sp.cfg.Range.Contains(d) {
			return true
		}
		px, py, pz := frame.Intrinsics.PixelToPoint(float64(x), float64(y), float64(d))
		pc.Positions = append(pc.Positions, frame.Pose.TransformPoint(r3.Vector{X: px, Y: py, Z: pz}))
		pc.Colors = append(pc.Colors, gradient.At(d))
		return true
	})
	return pc, nil
}

type parallelProjector struct {
	cfg ProjectorConfig
}

// NewParallelProjector returns a Projector that dispatches row ranges across
// worker goroutines. Output is identical to the serial projector's.
func NewParallelProjector(cfg ProjectorConfig) (Projector, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, err
	}
	return &parallelProjector{cfg: cfg}, nil
}

// chunk is a per-group output buffer, pooled so steady-state projection does
// not allocate per frame.
type chunk struct {
	positions []r3.Vector
	colors    []color.NRGBA
}

var chunkPool = sync.Pool{
	New: func() interface{} { return &chunk{} },
}

func (pp *parallelProjector) Project(ctx context.Context, frame *DepthFrame) (*pointcloud.PointCloud, error) {
	if err := frame.CheckValid(); err != nil {
		return nil, err
	}
	if frame.Pose == nil {
		return pointcloud.New(), ErrNoPose
	}
	gradient := pp.cfg.gradient()
	stride := pp.cfg.Stride
	width := frame.Depth.Width()
	numRows := (frame.Depth.Height() + stride - 1) / stride

	var chunks []*chunk
	err := utils.GroupWorkParallel(ctx, numRows, func(numGroups int) {
		chunks = make([]*chunk, numGroups)
	}, func(group, from, to int) error {
		//nolint:errcheck
		c := chunkPool.Get().(*chunk)
		c.positions = c.positions[:0]
		c.colors = c.colors[:0]
		for row := from; row < to; row++ {
			y := row * stride
			for x := 0; x < width; x += stride {
				d := frame.Depth.GetDepth(x, y)
				if !pp.cfg.Range.Contains(d) {
					continue
				}
				px, py, pz := frame.Intrinsics.PixelToPoint(float64(x), float64(y), float64(d))
				c.positions = append(c.positions, frame.Pose.TransformPoint(r3.Vector{X: px, Y: py, Z: pz}))
				c.colors = append(c.colors, gradient.At(d))
			}
		}
		chunks[group] = c
		return nil
	})
	if err != nil {
		for _, c := range chunks {
			if c != nil {
				chunkPool.Put(c)
			}
		}
		return nil, errors.Wrap(err, "parallel projection dispatch failed")
	}

	total := 0
	for _, c := range chunks {
		total += len(c.positions)
	}
	pc := &pointcloud.PointCloud{
		Positions: make([]r3.Vector, 0, total),
		Colors:    make([]color.NRGBA, 0, total),
	}
	// Merge in group order to keep row-major output order.
	for _, c := range chunks {
		pc.Positions = append(pc.Positions, c.positions...)
		pc.Colors = append(pc.Colors, c.colors...)
		chunkPool.Put(c)
	}
	return pc, nil
}
