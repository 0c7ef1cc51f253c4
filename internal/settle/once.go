// Package settle provides a one-shot completion primitive.
//
// A [Once] is resolved or rejected exactly once. Settling it a second time is a
// programming error and panics; callers never observe a value changing after it
// has been published.
package settle

import (
	"context"
	"sync"
)

// Once is a single-assignment result cell. The zero value is not usable; call [New].
type Once[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	value   T
	err     error
}

// New returns an unsettled Once.
func New[T any]() *Once[T] {
	return &Once[T]{done: make(chan struct{})}
}

// Resolve settles o with v.
func (o *Once[T]) Resolve(v T) {
	o.settle(v, nil)
}

// Reject settles o with err.
func (o *Once[T]) Reject(err error) {
	var zero T
	o.settle(zero, err)
}

func (o *Once[T]) settle(v T, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.settled {
		panic("settle: Once settled twice")
	}
	o.settled = true
	o.value = v
	o.err = err
	close(o.done)
}

// Done returns a channel closed once o is settled.
func (o *Once[T]) Done() <-chan struct{} {
	return o.done
}

// Settled reports whether o has been resolved or rejected.
func (o *Once[T]) Settled() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Wait blocks until o is settled or ctx is done.
func (o *Once[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
