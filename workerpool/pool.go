// Package workerpool holds the process-wide CPU-worker pool used by every
// pipeline stage. It is initialised once at startup from the CLI's
// --threads option and lives until process exit.
package workerpool

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	mu   sync.Mutex
	size = runtime.GOMAXPROCS(0)
)

// Init sets the global worker count. A size <= 0 falls back to
// runtime.GOMAXPROCS(0). Call this once at startup, before the first
// parallel stage runs.
func Init(threads int) {
	mu.Lock()
	defer mu.Unlock()
	if threads > 0 {
		size = threads
	} else {
		size = runtime.GOMAXPROCS(0)
	}
}

// Size returns the currently configured worker count.
func Size() int {
	mu.Lock()
	defer mu.Unlock()
	return size
}

// Run executes fn once per item in items, bounded to Size() concurrent
// goroutines, and returns the first error encountered (if any). Remaining
// in-flight goroutines are allowed to finish; fn is responsible for making
// its own work safe to run concurrently.
func Run[T any](items []T, fn func(T) error) error {
	group := new(errgroup.Group)
	group.SetLimit(Size())

	for _, item := range items {
		item := item
		group.Go(func() error {
			return fn(item)
		})
	}

	return group.Wait()
}
