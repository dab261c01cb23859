package pointcloud

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultOutlierNeighbors is the neighbor count k used by outlier removal
// when callers do not override it.
const DefaultOutlierNeighbors = 8

// RemoveStatisticalOutliers discards points whose mean distance to their k
// nearest neighbors exceeds mu + sigma*stddev, where mu and stddev are taken
// over all per-point mean neighbor distances. The statistics are computed in a
// first full pass and applied in a second, so the result does not depend on
// point order. A cloud with k or fewer points is returned unchanged.
func RemoveStatisticalOutliers(pc *PointCloud, k int, sigma float64) (*PointCloud, error) {
	if k < 1 {
		return nil, errors.Errorf("neighbor count must be >= 1, got %d", k)
	}
	if sigma <= 0 {
		return nil, errors.Errorf("sigma multiplier must be > 0, got %v", sigma)
	}
	if pc.Size() <= k {
		return pc.Clone(), nil
	}

	meanDists := make([]float64, pc.Size())
	for i := range pc.Positions {
		neighbors := nearestNeighbors(pc.Positions, i, k)
		sum := 0.0
		for _, j := range neighbors {
			sum += pc.Positions[j].Sub(pc.Positions[i]).Norm()
		}
		meanDists[i] = sum / float64(len(neighbors))
	}

	mean, stddev := stat.MeanStdDev(meanDists, nil)
	threshold := mean + sigma*stddev

	keep := make([]int, 0, pc.Size())
	for i, d := range meanDists {
		if d <= threshold {
			keep = append(keep, i)
		}
	}
	return pc.keepIndices(keep), nil
}
