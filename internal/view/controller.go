// Package view implements the client-side coordination layer for dashboard
// views: a fetch state machine with stale-result protection, and a
// trailing-edge debouncer for search input.
package view

import (
	"context"
	"sync"
)

// State is the rendering state of one view.
type State int

const (
	// Idle means no fetch has been initiated yet.
	Idle State = iota
	// Loading means a fetch is in flight; render the skeleton.
	Loading
	// Ready means the latest fetch succeeded; render the content.
	Ready
	// Failed means the latest fetch failed; render the error panel. The
	// only way out is a user-triggered reload.
	Failed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is an immutable view of a controller at one instant. Exactly one
// of skeleton, error panel or content corresponds to each state; Value is
// meaningful only in Ready, Err only in Failed.
type Snapshot[T any] struct {
	State      State
	Value      T
	Err        error
	Generation uint64
}

// Controller coordinates fetches for a single view. Every Load bumps a
// monotonically increasing generation; a completion applies only while its
// generation is still current, so a slow early fetch can never overwrite the
// result of a later one regardless of completion order.
//
// Parameter changes and retries are both just another Load. There is no
// cancellation of in-flight fetches: a superseded completion is ignored.
type Controller[T any] struct {
	mu       sync.Mutex
	gen      uint64
	snap     Snapshot[T]
	onChange func(Snapshot[T])
}

// NewController creates a controller in the Idle state. onChange, if not nil,
// is invoked synchronously after every state transition with the new
// snapshot; views re-derive their output from it.
func NewController[T any](onChange func(Snapshot[T])) *Controller[T] {
	return &Controller[T]{onChange: onChange}
}

// Snapshot returns the current snapshot.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Load transitions the view to Loading and runs fetch on its own goroutine.
// When fetch returns, the result is applied only if no newer Load has been
// initiated in the meantime.
func (c *Controller[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.snap = Snapshot[T]{State: Loading, Generation: gen}
	snap := c.snap
	c.mu.Unlock()

	c.emit(snap)

	go func() {
		v, err := fetch(ctx)
		c.complete(gen, v, err)
	}()
}

// LoadSync is Load without the goroutine, for single-threaded callers that
// want the result applied before Load returns.
func (c *Controller[T]) LoadSync(ctx context.Context, fetch func(context.Context) (T, error)) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.snap = Snapshot[T]{State: Loading, Generation: gen}
	snap := c.snap
	c.mu.Unlock()

	c.emit(snap)

	v, err := fetch(ctx)
	c.complete(gen, v, err)
}

// complete applies a fetch result if its generation is still current.
func (c *Controller[T]) complete(gen uint64, v T, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// 新しいLoadに追い越された完了は捨てる
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.snap = Snapshot[T]{State: Failed, Err: err, Generation: gen}
	} else {
		c.snap = Snapshot[T]{State: Ready, Value: v, Generation: gen}
	}
	snap := c.snap
	c.mu.Unlock()

	c.emit(snap)
}

func (c *Controller[T]) emit(snap Snapshot[T]) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
