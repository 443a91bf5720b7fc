// Package optimistic applies a local state change before the remote call that
// makes it durable, then confirms it or rolls it back.
package optimistic

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State of one optimistic update.
type State int

const (
	Applied State = iota
	Confirmed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Applied:
		return "applied"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Reporter receives remote failures whose local change was rolled back.
type Reporter interface {
	Report(ctx context.Context, op string, err error)
}

// ZapReporter logs failures at warn level.
type ZapReporter struct {
	Log *zap.Logger
}

func (r ZapReporter) Report(_ context.Context, op string, err error) {
	r.Log.Warn("Optimistic update rolled back", zap.String("op", op), zap.Error(err))
}

// Update records the outcome of one Run.
type Update[T comparable] struct {
	Op       string
	Previous T
	Next     T
	State    State
	Err      error
}

// Cell holds a locally displayed value.
type Cell[T comparable] struct {
	mu       sync.Mutex
	value    T
	reporter Reporter
	observe  func(T, State)
}

// Option configures a Cell.
type Option[T comparable] func(*Cell[T])

// WithObserver is called on every transition with the value now held.
func WithObserver[T comparable](fn func(T, State)) Option[T] {
	return func(c *Cell[T]) { c.observe = fn }
}

// NewCell creates a Cell. A nil reporter discards failures.
func NewCell[T comparable](initial T, reporter Reporter, opts ...Option[T]) *Cell[T] {
	c := &Cell[T]{value: initial, reporter: reporter}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Run sets the value to next(current) immediately and then calls remote. On
// failure the previous value is restored, unless a later Run has replaced the
// value in the meantime, and the error is reported and returned.
func (c *Cell[T]) Run(ctx context.Context, op string, next func(T) T, remote func(context.Context) error) (Update[T], error) {
	c.mu.Lock()
	u := Update[T]{Op: op, Previous: c.value, State: Applied}
	u.Next = next(c.value)
	c.value = u.Next
	c.notify(u.Next, Applied)
	c.mu.Unlock()

	err := remote(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		u.State = Confirmed
		c.notify(c.value, Confirmed)
		return u, nil
	}

	u.State = RolledBack
	u.Err = err
	if c.value == u.Next {
		c.value = u.Previous
	}
	c.notify(c.value, RolledBack)
	if c.reporter != nil {
		c.reporter.Report(ctx, op, err)
	}
	return u, err
}

func (c *Cell[T]) notify(v T, s State) {
	if c.observe != nil {
		c.observe(v, s)
	}
}
