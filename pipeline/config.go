package pipeline

import (
	"encoding/json"
	"image/color"
	"os"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/depthcloud/depth"
	"go.viam.com/depthcloud/pointcloud"
	"go.viam.com/depthcloud/transform"
)

// Config is the full settings surface of a capture pipeline. Zero values on
// the optional processing stages disable them.
type Config struct {
	// Stride skips every Nth pixel in each axis during sampling.
	Stride int `json:"stride"`
	// MinDepth and MaxDepth bound accepted samples, in meters. MinDepth must
	// be > 0.
	MinDepth float64 `json:"min_depth_m"`
	MaxDepth float64 `json:"max_depth_m"`
	// CaptureInterval is the cadence of timed captures. Zero disables the
	// timer; captures then only happen via Trigger.
	CaptureInterval time.Duration `json:"capture_interval"`

	NearColor color.NRGBA `json:"near_color"`
	FarColor  color.NRGBA `json:"far_color"`

	// MinRadius/MaxRadius bound the distance filter around the capture
	// origin. MaxRadius of 0 disables the filter.
	MinRadius float64 `json:"min_radius_m"`
	MaxRadius float64 `json:"max_radius_m"`
	// DownsampleStride keeps every k-th point. Values below 2 disable it.
	DownsampleStride int `json:"downsample_stride"`
	// OutlierSigma of 0 disables statistical outlier removal.
	OutlierSigma     float64 `json:"outlier_sigma"`
	OutlierNeighbors int     `json:"outlier_neighbors"`
	// EstimateNormals controls whether published clouds carry normals.
	EstimateNormals bool    `json:"estimate_normals"`
	NormalRadius    float64 `json:"normal_radius_m"`
	NormalNeighbors int     `json:"normal_neighbors"`
	// ReconstructMesh controls whether a splat mesh is published alongside
	// the cloud.
	ReconstructMesh bool    `json:"reconstruct_mesh"`
	SplatRadius     float64 `json:"splat_radius_m"`
}

// DefaultConfig captures every other pixel once a second with processing off.
func DefaultConfig() Config {
	gradient := transform.DefaultDepthGradient()
	return Config{
		Stride:           2,
		MinDepth:         gradient.Range.Min,
		MaxDepth:         gradient.Range.Max,
		CaptureInterval:  time.Second,
		NearColor:        gradient.Near,
		FarColor:         gradient.Far,
		OutlierNeighbors: pointcloud.DefaultOutlierNeighbors,
		NormalRadius:     0.05,
		NormalNeighbors:  pointcloud.DefaultNormalNeighbors,
		SplatRadius:      0.01,
	}
}

// NewConfigFromJSONFile reads a Config from a JSON file, applying defaults
// for anything unset.
func NewConfigFromJSONFile(jsonPath string) (Config, error) {
	cfg := DefaultConfig()
	//nolint:gosec
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return cfg, errors.Wrap(err, "error reading pipeline config file")
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(err, "error parsing pipeline config JSON")
	}
	return cfg, cfg.CheckValid()
}

// CheckValid checks if the fields for Config have valid inputs.
func (cfg Config) CheckValid() error {
	if cfg.Stride < 1 {
		return errors.Errorf("subsample stride must be >= 1, got %d", cfg.Stride)
	}
	if _, err := depth.NewRange(cfg.MinDepth, cfg.MaxDepth); err != nil {
		return err
	}
	if cfg.CaptureInterval < 0 {
		return errors.Errorf("capture interval must be >= 0, got %v", cfg.CaptureInterval)
	}
	if cfg.MaxRadius > 0 && cfg.MinRadius > cfg.MaxRadius {
		return errors.Errorf("invalid distance filter range [%v, %v]", cfg.MinRadius, cfg.MaxRadius)
	}
	if cfg.OutlierSigma > 0 && cfg.OutlierNeighbors < 1 {
		return errors.Errorf("outlier neighbor count must be >= 1, got %d", cfg.OutlierNeighbors)
	}
	if cfg.EstimateNormals && cfg.NormalRadius <= 0 {
		return errors.Errorf("normal estimation radius must be > 0, got %v", cfg.NormalRadius)
	}
	if cfg.ReconstructMesh && cfg.SplatRadius <= 0 {
		return errors.Errorf("splat radius must be > 0, got %v", cfg.SplatRadius)
	}
	return nil
}

func (cfg Config) projectorConfig() transform.ProjectorConfig {
	return transform.ProjectorConfig{
		Stride: cfg.Stride,
		Range:  depth.Range{Min: cfg.MinDepth, Max: cfg.MaxDepth},
		Near:   cfg.NearColor,
		Far:    cfg.FarColor,
	}
}
