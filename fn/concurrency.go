package fn

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrFunc is a function that takes a context (to allow early cancellation)
// and a single value, returning an error. It is used as a closure to perform
// concurrent work over a homogeneous slice of values.
type ErrFunc[V any] func(context.Context, V) error

// ParSlice executes f on each element of s in parallel, with at most
// runtime.NumCPU() goroutines active at any time. The call blocks until all
// goroutines have returned. The context handed to f is cancelled as soon as
// the first invocation fails, and that first non-nil error is returned.
func ParSlice[V any](ctx context.Context, s []V, f ErrFunc[V]) error {
	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.SetLimit(runtime.NumCPU())

	for _, v := range s {
		errGroup.Go(func() error {
			return f(ctx, v)
		})
	}

	return errGroup.Wait()
}
