package quota

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultDailyLimit = 100
	DefaultWindow     = 24 * time.Hour
)

// ErrQuotaExceeded is matched by every *ExceededError.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ExceededError reports a rejected admission and when the window reopens.
type ExceededError struct {
	Limit   int
	ResetAt time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Daily limit of %d websites reached. Try again tomorrow.", e.Limit)
}

func (e *ExceededError) Unwrap() error { return ErrQuotaExceeded }

// Snapshot is a read-only view of the counter.
type Snapshot struct {
	Limit     int
	Count     int
	Remaining int
	ResetAt   time.Time
}

// Guard tracks a single global counter over a sliding window. The window is
// anchored to the first admission after the previous one expired.
//
// In relaxed mode the admission check and the increment are separate
// critical sections, so concurrent requests can overshoot the limit by up to
// concurrency-1. Strict mode reserves a slot at admission time.
type Guard struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	strict   bool
	now      func() time.Time
	count    int
	inFlight int
	resetAt  time.Time
}

type Option func(*Guard)

func WithLimit(limit int) Option {
	return func(g *Guard) {
		g.limit = limit
	}
}

func WithWindow(window time.Duration) Option {
	return func(g *Guard) {
		g.window = window
	}
}

// WithStrict enables the hard ceiling.
func WithStrict(strict bool) Option {
	return func(g *Guard) {
		g.strict = strict
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

func New(opts ...Option) (*Guard, error) {
	g := &Guard{
		limit:  DefaultDailyLimit,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.limit <= 0 {
		return nil, fmt.Errorf("quota limit must be positive, got %d", g.limit)
	}
	if g.window <= 0 {
		return nil, fmt.Errorf("quota window must be positive, got %s", g.window)
	}
	if g.now == nil {
		return nil, errors.New("quota clock is required")
	}
	g.resetAt = g.now().Add(g.window)
	return g, nil
}

// Limit returns the configured ceiling.
func (g *Guard) Limit() int { return g.limit }

// Strict reports whether admissions reserve a slot.
func (g *Guard) Strict() bool { return g.strict }

// Admit decides whether a new generation may start. Rejections return an
// *ExceededError and leave the counter untouched.
func (g *Guard) Admit() (*Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollLocked()

	used := g.count
	if g.strict {
		used += g.inFlight
	}
	if used >= g.limit {
		return nil, &ExceededError{Limit: g.limit, ResetAt: g.resetAt}
	}
	if g.strict {
		g.inFlight++
	}
	return &Ticket{guard: g}, nil
}

// Snapshot returns the current state, applying a due window reset first.
func (g *Guard) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollLocked()
	return g.snapshotLocked()
}

func (g *Guard) rollLocked() {
	now := g.now()
	if now.After(g.resetAt) {
		g.count = 0
		g.resetAt = now.Add(g.window)
	}
}

func (g *Guard) snapshotLocked() Snapshot {
	return Snapshot{
		Limit:     g.limit,
		Count:     g.count,
		Remaining: max(0, g.limit-g.count),
		ResetAt:   g.resetAt,
	}
}

func (g *Guard) commit() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.strict {
		g.inFlight--
	}
	g.count++
	return g.snapshotLocked()
}

func (g *Guard) release() {
	if !g.strict {
		return
	}
	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
}

// Ticket is an admitted request. Exactly one of Commit or Release takes
// effect; later calls are no-ops.
type Ticket struct {
	guard *Guard
	once  sync.Once
	snap  Snapshot
}

// Commit consumes one unit of quota. Call it only after a successful
// generation.
func (t *Ticket) Commit() Snapshot {
	t.once.Do(func() {
		t.snap = t.guard.commit()
	})
	return t.snap
}

// Release gives the admission back without consuming quota.
func (t *Ticket) Release() {
	t.once.Do(func() {
		t.guard.release()
		t.snap = t.guard.Snapshot()
	})
}
