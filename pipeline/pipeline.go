// Package pipeline orchestrates per-frame capture: it pulls depth frames from
// a source, reprojects them into point clouds, runs the configured processing
// stages, and publishes the result to registered consumers.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/depthcloud/depth"
	"go.viam.com/depthcloud/mesh"
	"go.viam.com/depthcloud/pointcloud"
	"go.viam.com/depthcloud/transform"
)

// State is the orchestrator's position in a capture pass.
type State int32

// The pipeline states. A pass moves through them in order and always returns
// to StateIdle.
const (
	StateIdle State = iota
	StateCapturing
	StateReprojecting
	StateProcessing
	StatePublished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateReprojecting:
		return "reprojecting"
	case StateProcessing:
		return "processing"
	case StatePublished:
		return "published"
	default:
		return "unknown"
	}
}

// DepthSource supplies depth frames from a sensor or XR runtime.
type DepthSource interface {
	// DepthAvailable reports whether a frame can be captured right now.
	// False is not an error; the tick is simply skipped.
	DepthAvailable() bool
	NextFrame(ctx context.Context) (*transform.DepthFrame, error)
}

// Result is one published pipeline pass. It is a read-only snapshot; the
// orchestrator never mutates it after publication.
type Result struct {
	Cloud *pointcloud.PointCloud
	// Mesh is nil unless reconstruction is enabled.
	Mesh       *mesh.Mesh
	Seq        uint64
	CapturedAt time.Time
}

// Consumer receives each published Result synchronously, in registration
// order, before the pipeline returns to idle.
type Consumer interface {
	Publish(ctx context.Context, res *Result)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(ctx context.Context, res *Result)

// Publish calls the underlying function.
func (f ConsumerFunc) Publish(ctx context.Context, res *Result) {
	f(ctx, res)
}

// Orchestrator owns capture policy: cadence, drop-if-busy triggering,
// parallel-vs-serial projection, and publication. At most one pass is in
// flight at a time; a trigger while busy is dropped, not queued, since depth
// data is most-recent-wins.
type Orchestrator struct {
	cfg      Config
	source   DepthSource
	parallel transform.Projector
	serial   transform.Projector
	logger   golog.Logger
	clock    clock.Clock

	state  atomic.Int32
	seq    atomic.Uint64
	latest atomic.Pointer[Result]

	mu        sync.Mutex
	consumers []Consumer

	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// New returns an Orchestrator reading from source.
func New(cfg Config, source DepthSource, logger golog.Logger) (*Orchestrator, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("depth source cannot be nil")
	}
	parallel, err := transform.NewParallelProjector(cfg.projectorConfig())
	if err != nil {
		return nil, err
	}
	serial, err := transform.NewSerialProjector(cfg.projectorConfig())
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:      cfg,
		source:   source,
		parallel: parallel,
		serial:   serial,
		logger:   logger,
		clock:    clock.New(),
	}, nil
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Latest returns the most recently published result, or nil before the first
// publication. The snapshot is consistent; it is replaced atomically.
func (o *Orchestrator) Latest() *Result {
	return o.latest.Load()
}

// AddConsumer registers a consumer for future publications.
func (o *Orchestrator) AddConsumer(c Consumer) {
	o.mu.Lock()
	o.consumers = append(o.consumers, c)
	o.mu.Unlock()
}

// Start begins timed captures at the configured interval. It is a no-op when
// the interval is zero.
func (o *Orchestrator) Start(ctx context.Context) {
	if o.cfg.CaptureInterval == 0 {
		return
	}
	ctx, o.cancel = context.WithCancel(ctx)
	ticker := o.clock.Ticker(o.cfg.CaptureInterval)
	o.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer o.activeBackgroundWorkers.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.Trigger(ctx)
			}
		}
	})
}

// Close stops timed captures and waits for any in-flight pass to finish.
func (o *Orchestrator) Close() {
	if o.cancel != nil {
		o.cancel()
	}
	o.activeBackgroundWorkers.Wait()
}

// Trigger runs one capture pass. It returns false when a pass was already in
// flight and this trigger was dropped.
func (o *Orchestrator) Trigger(ctx context.Context) bool {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateCapturing)) {
		o.logger.Debugw("capture trigger dropped, pass already in flight", "state", o.State().String())
		return false
	}
	defer o.state.Store(int32(StateIdle))
	o.runPass(ctx)
	return true
}

func (o *Orchestrator) runPass(ctx context.Context) {
	if !o.source.DepthAvailable() {
		o.logger.Debug("no depth available this tick")
		return
	}
	frame, err := o.source.NextFrame(ctx)
	if err != nil {
		o.logger.Warnw("failed to capture depth frame", "error", err)
		return
	}

	o.state.Store(int32(StateReprojecting))
	cloud, err := o.project(ctx, frame)
	if err != nil {
		// Whole-frame input absence; the previously published result stays.
		o.logger.Debugw("skipping pass", "error", err)
		return
	}

	o.state.Store(int32(StateProcessing))
	origin := frame.Pose.Position()
	cloud = o.process(cloud, origin)

	var m *mesh.Mesh
	if o.cfg.ReconstructMesh {
		m, err = mesh.NewSplatMesh(cloud, o.cfg.SplatRadius, origin)
		if err != nil {
			o.logger.Warnw("mesh reconstruction failed", "error", err)
			m = nil
		}
	}

	o.state.Store(int32(StatePublished))
	res := &Result{
		Cloud:      cloud,
		Mesh:       m,
		Seq:        o.seq.Add(1),
		CapturedAt: frame.CapturedAt,
	}
	o.latest.Store(res)

	o.mu.Lock()
	consumers := make([]Consumer, len(o.consumers))
	copy(consumers, o.consumers)
	o.mu.Unlock()
	for _, c := range consumers {
		c.Publish(ctx, res)
	}
}

// project runs the parallel projector and falls back to serial on dispatch
// failure without surfacing an error to the caller, only a diagnostic log.
func (o *Orchestrator) project(ctx context.Context, frame *transform.DepthFrame) (*pointcloud.PointCloud, error) {
	cloud, err := o.parallel.Project(ctx, frame)
	if err == nil {
		return cloud, nil
	}
	if errors.Is(err, transform.ErrNoPose) || errors.Is(err, depth.ErrNoDepthData) {
		return nil, err
	}
	o.logger.Debugw("parallel projection failed, falling back to serial", "error", err)
	return o.serial.Project(ctx, frame)
}

// process threads the cloud through the enabled stages. A stage failure is
// logged and the stage skipped; the pass continues with the previous cloud.
func (o *Orchestrator) process(cloud *pointcloud.PointCloud, origin r3.Vector) *pointcloud.PointCloud {
	if o.cfg.MaxRadius > 0 {
		filtered, err := pointcloud.FilterByDistance(cloud, origin, o.cfg.MinRadius, o.cfg.MaxRadius)
		if err != nil {
			o.logger.Warnw("distance filter failed", "error", err)
		} else {
			cloud = filtered
		}
	}
	if o.cfg.DownsampleStride > 1 {
		downsampled, err := pointcloud.Downsample(cloud, o.cfg.DownsampleStride)
		if err != nil {
			o.logger.Warnw("downsample failed", "error", err)
		} else {
			cloud = downsampled
		}
	}
	if o.cfg.OutlierSigma > 0 {
		inliers, err := pointcloud.RemoveStatisticalOutliers(cloud, o.cfg.OutlierNeighbors, o.cfg.OutlierSigma)
		if err != nil {
			o.logger.Warnw("outlier removal failed", "error", err)
		} else {
			cloud = inliers
		}
	}
	if o.cfg.EstimateNormals || o.cfg.ReconstructMesh {
		withNormals, err := pointcloud.EstimateNormals(cloud, o.cfg.NormalRadius, o.cfg.NormalNeighbors, origin)
		if err != nil {
			o.logger.Warnw("normal estimation failed", "error", err)
		} else {
			cloud = withNormals
		}
	}
	return cloud
}
