// Package async provides a minimal asynchronous result with continuations.
package async

import (
	"context"
	"sync"
)

// Future is the eventual outcome of an operation that yields no value.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// New returns a pending future and the function that resolves it.
// Only the first resolution takes effect.
func New() (*Future, func(error)) {
	f := &Future{done: make(chan struct{})}
	return f, f.resolve
}

// Go runs fn in a new goroutine and resolves the future with its result.
func Go(fn func() error) *Future {
	f, resolve := New()
	go func() { resolve(fn()) }()
	return f
}

// Resolved returns an already completed future.
func Resolved(err error) *Future {
	f, resolve := New()
	resolve(err)
	return f
}

func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the result. It is nil until Done is closed.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Then attaches a continuation that runs once, after resolution, on its own goroutine.
func (f *Future) Then(fn func(error)) *Future {
	next, resolve := New()
	go func() {
		<-f.done
		fn(f.err)
		resolve(f.err)
	}()
	return next
}
