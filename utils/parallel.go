// Package utils contains small helpers shared across depthcloud packages.
package utils

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

// GroupWorkFunc processes one contiguous index range [from, to) as a single group.
type GroupWorkFunc func(group, from, to int) error

// GroupWorkParallel splits [0, totalSize) into contiguous index ranges and runs
// one goroutine per range. before is called once with the number of groups so
// callers can size per-group buffers; group results stay in group order, which
// keeps merged output deterministic. Errors from all groups are combined.
func GroupWorkParallel(ctx context.Context, totalSize int, before func(numGroups int), work GroupWorkFunc) error {
	if totalSize <= 0 {
		before(0)
		return nil
	}
	numGroups := ParallelFactor
	if numGroups < 1 {
		numGroups = 1
	}
	if totalSize < numGroups {
		numGroups = totalSize
	}
	before(numGroups)

	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	errs := make([]error, numGroups)
	var wait sync.WaitGroup
	wait.Add(numGroups)
	from := 0
	for group := 0; group < numGroups; group++ {
		to := from + groupSize
		if group < extra {
			to++
		}
		groupCopy, fromCopy, toCopy := group, from, to
		goutils.PanicCapturingGo(func() {
			defer wait.Done()
			if err := ctx.Err(); err != nil {
				errs[groupCopy] = err
				return
			}
			errs[groupCopy] = work(groupCopy, fromCopy, toCopy)
		})
		from = to
	}
	wait.Wait()
	return multierr.Combine(errs...)
}
