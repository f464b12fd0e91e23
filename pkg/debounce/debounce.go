// Package debounce guards user actions against rapid repeated triggers.
// Once an action fires it is disabled until it re-arms, either after a
// fixed timeout or when the caller signals completion explicitly.
// Triggers received while disabled are dropped, never queued.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the re-arm timeout used by Wrap.
const DefaultWindow = time.Second

// Action wraps a function so that at most one invocation is in flight at
// a time.
type Action[T any] struct {
	mu     sync.Mutex
	armed  bool
	window time.Duration // 0 means explicit-reset only
	fn     func(T)
}

// Wrap creates a time-scoped debounced action with the default window.
func Wrap[T any](fn func(T)) *Action[T] {
	return WrapWithWindow(fn, DefaultWindow)
}

// WrapWithWindow creates a time-scoped debounced action that re-arms
// after the given window.
func WrapWithWindow[T any](fn func(T), window time.Duration) *Action[T] {
	return &Action[T]{armed: true, window: window, fn: fn}
}

// WrapManual creates an explicit-reset debounced action. It stays
// disabled after a trigger until Reset is called.
func WrapManual[T any](fn func(T)) *Action[T] {
	return &Action[T]{armed: true, fn: fn}
}

// Trigger invokes the wrapped function if the action is armed and
// reports whether the invocation happened.
func (a *Action[T]) Trigger(param T) bool {
	a.mu.Lock()
	if !a.armed {
		a.mu.Unlock()
		return false
	}
	a.armed = false
	if a.window > 0 {
		time.AfterFunc(a.window, a.Reset)
	}
	fn := a.fn
	a.mu.Unlock()

	fn(param)
	return true
}

// Reset re-arms the action. For time-scoped actions it may be called
// early to re-enable before the window elapses.
func (a *Action[T]) Reset() {
	a.mu.Lock()
	a.armed = true
	a.mu.Unlock()
}

// Armed reports whether a trigger would currently fire.
func (a *Action[T]) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.armed
}
