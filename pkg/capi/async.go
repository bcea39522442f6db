package capi

import "context"

// Result carries the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn in its own goroutine. The returned channel receives exactly
// one Result and is then closed.
func Async[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) <-chan Result[T] {
	results := make(chan Result[T], 1)

	go func() {
		defer close(results)

		value, err := fn(ctx)
		results <- Result[T]{Value: value, Err: err}
	}()

	return results
}

// Await blocks until the result arrives or ctx is done.
func Await[T any](ctx context.Context, results <-chan Result[T]) (T, error) {
	select {
	case result := <-results:
		return result.Value, result.Err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}
