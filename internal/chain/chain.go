// Package chain sequences asynchronous protocol steps.
//
// A chain threads an accumulating value through an ordered list of steps.
// Each step sees everything merged so far and returns a partial value that
// is merged on top. The first failing step ends the chain: its error is
// returned unchanged and nothing accumulated is exposed.
package chain

import "context"

// Merger is implemented by accumulated values. Merge returns the receiver
// with the non-zero fields of next laid over it.
type Merger[T any] interface {
	Merge(next T) T
}

// Step receives the accumulated value and returns a partial update.
type Step[T any] func(ctx context.Context, acc T) (T, error)

// Run executes steps strictly in order. Step i+1 starts only after step i
// returned successfully. On failure Run returns the zero T and the step's
// error as is.
func Run[T Merger[T]](ctx context.Context, initial T, steps ...Step[T]) (T, error) {
	var zero T
	acc := initial
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		partial, err := step(ctx, acc)
		if err != nil {
			return zero, err
		}
		acc = acc.Merge(partial)
	}
	return acc, nil
}
