package pointcloud

import "github.com/golang/geo/r3"

// nearestNeighbors returns the indices of the k points closest to point i,
// excluding i itself. Brute force; clouds here are small enough that a spatial
// index does not pay for itself.
func nearestNeighbors(positions []r3.Vector, i, k int) []int {
	if k > len(positions)-1 {
		k = len(positions) - 1
	}
	if k <= 0 {
		return nil
	}
	best := make([]int, 0, k)
	bestDist := make([]float64, 0, k)
	for j, p := range positions {
		if j == i {
			continue
		}
		d := p.Sub(positions[i]).Norm2()
		if len(best) < k {
			best = append(best, j)
			bestDist = append(bestDist, d)
		} else if d < bestDist[maxIndex(bestDist)] {
			worst := maxIndex(bestDist)
			best[worst] = j
			bestDist[worst] = d
		}
	}
	return best
}

// radiusNeighbors returns the indices of all points within radius of point i,
// excluding i itself.
func radiusNeighbors(positions []r3.Vector, i int, radius float64) []int {
	r2 := radius * radius
	var out []int
	for j, p := range positions {
		if j == i {
			continue
		}
		if p.Sub(positions[i]).Norm2() <= r2 {
			out = append(out, j)
		}
	}
	return out
}

func maxIndex(vals []float64) int {
	idx := 0
	for i, v := range vals {
		if v > vals[idx] {
			idx = i
		}
	}
	return idx
}
