// Package parallel provides the map/reduce fan-out used by the per-element
// scalar multiplications, batched-pairing, and GIPA fold computations (MSMs
// go through the curve package's own MultiExp instead). Determinism is never
// threatened, since every reduction is over a commutative group operation.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Do splits n independent units of work into contiguous chunks, one per
// available CPU, and runs fn(i) for every i in [0,n) concurrently. It
// returns the first error encountered, after every worker has finished.
func Do(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
