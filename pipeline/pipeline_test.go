package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/depthcloud/depth"
	"go.viam.com/depthcloud/transform"
)

// staticSource hands out the same frame every tick.
type staticSource struct {
	mu        sync.Mutex
	available bool
	frame     *transform.DepthFrame
}

func (s *staticSource) DepthAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *staticSource) NextFrame(context.Context) (*transform.DepthFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, nil
}

func (s *staticSource) setFrame(frame *transform.DepthFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

func makeTestFrame(t *testing.T, width, height int, d depth.Depth, pose *transform.Pose) *transform.DepthFrame {
	t.Helper()
	dm := depth.NewEmptyMap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dm.Set(x, y, d)
		}
	}
	return &transform.DepthFrame{
		Depth: dm,
		Intrinsics: &transform.PinholeCameraIntrinsics{
			Width: width, Height: height,
			Fx: 4, Fy: 4, Ppx: 2, Ppy: 2,
		},
		Pose:       pose,
		CapturedAt: time.Now(),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Stride = 1
	cfg.MinDepth = 0.1
	cfg.MaxDepth = 10
	cfg.CaptureInterval = 0
	return cfg
}

// recorder collects every published result.
type recorder struct {
	mu      sync.Mutex
	results []*Result
}

func (r *recorder) Publish(_ context.Context, res *Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func TestTriggerPublishes(t *testing.T) {
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(testConfig(), source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	rec := &recorder{}
	orch.AddConsumer(rec)

	test.That(t, orch.State(), test.ShouldEqual, StateIdle)
	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	test.That(t, orch.State(), test.ShouldEqual, StateIdle)

	test.That(t, rec.count(), test.ShouldEqual, 1)
	res := orch.Latest()
	test.That(t, res, test.ShouldNotBeNil)
	test.That(t, res.Seq, test.ShouldEqual, uint64(1))
	test.That(t, res.Cloud.Size(), test.ShouldEqual, 16)
	test.That(t, res.Mesh, test.ShouldBeNil)
}

func TestTriggerDropsWhenBusy(t *testing.T) {
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(testConfig(), source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	entered := make(chan struct{})
	release := make(chan struct{})
	orch.AddConsumer(ConsumerFunc(func(context.Context, *Result) {
		close(entered)
		<-release
	}))

	firstDone := make(chan bool)
	go func() {
		firstDone <- orch.Trigger(context.Background())
	}()
	<-entered

	// a trigger while a pass is in flight is dropped, not queued
	test.That(t, orch.Trigger(context.Background()), test.ShouldBeFalse)
	close(release)
	test.That(t, <-firstDone, test.ShouldBeTrue)

	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	test.That(t, orch.Latest().Seq, test.ShouldEqual, uint64(2))
}

func TestNoDepthAvailableSkipsTick(t *testing.T) {
	source := &staticSource{available: false, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(testConfig(), source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	test.That(t, orch.Latest(), test.ShouldBeNil)
}

func TestMissingPoseLeavesPreviousResult(t *testing.T) {
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(testConfig(), source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	first := orch.Latest()
	test.That(t, first, test.ShouldNotBeNil)

	source.setFrame(makeTestFrame(t, 4, 4, 2.0, nil))
	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	test.That(t, orch.Latest(), test.ShouldEqual, first)
}

func TestMonotonicSequence(t *testing.T) {
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(testConfig(), source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	rec := &recorder{}
	orch.AddConsumer(rec)
	for i := 0; i < 5; i++ {
		test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	}
	test.That(t, rec.count(), test.ShouldEqual, 5)
	for i, res := range rec.results {
		test.That(t, res.Seq, test.ShouldEqual, uint64(i+1))
	}
}

func TestProcessingChain(t *testing.T) {
	cfg := testConfig()
	cfg.DownsampleStride = 2
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(cfg, source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	test.That(t, orch.Latest().Cloud.Size(), test.ShouldEqual, 8)
}

func TestMeshPublication(t *testing.T) {
	cfg := testConfig()
	cfg.ReconstructMesh = true
	cfg.SplatRadius = 0.05
	cfg.NormalRadius = 2
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(cfg, source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, orch.Trigger(context.Background()), test.ShouldBeTrue)
	res := orch.Latest()
	test.That(t, res.Mesh, test.ShouldNotBeNil)
	test.That(t, res.Mesh.CheckValid(), test.ShouldBeNil)
	test.That(t, res.Mesh.TriangleCount(), test.ShouldBeGreaterThan, 0)
	test.That(t, res.Cloud.HasNormals(), test.ShouldBeTrue)
}

func TestTimedCapture(t *testing.T) {
	cfg := testConfig()
	cfg.CaptureInterval = time.Second
	source := &staticSource{available: true, frame: makeTestFrame(t, 4, 4, 2.0, transform.NewZeroPose())}
	orch, err := New(cfg, source, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	mock := clock.NewMock()
	orch.clock = mock

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orch.Start(ctx)
	defer orch.Close()

	mock.Add(time.Second)
	deadline := time.Now().Add(5 * time.Second)
	for orch.Latest() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	res := orch.Latest()
	test.That(t, res, test.ShouldNotBeNil)
	test.That(t, res.Cloud.Size(), test.ShouldEqual, 16)
}

func TestConfigValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Stride = 0
	_, err := New(cfg, &staticSource{}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	cfg = testConfig()
	cfg.MinDepth = 0
	_, err = New(cfg, &staticSource{}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	cfg = testConfig()
	_, err = New(cfg, nil, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	cfg = testConfig()
	cfg.ReconstructMesh = true
	cfg.SplatRadius = 0
	_, err = New(cfg, &staticSource{}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
