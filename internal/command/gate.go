package command

import (
	"sync"
	"time"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

// DefaultDebounce is the minimum spacing between dispatched commands.
const DefaultDebounce = 2000 * time.Millisecond

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// Gate drops any command arriving within the debounce window of the last
// command it let through, whatever its type. Unrecognized commands are
// always dropped and never move the clock. Safe for concurrent use.
type Gate struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time // zero until the first command passes
}

// NewGate creates a gate with the given window. Negative windows are
// treated as zero.
func NewGate(window time.Duration, opts ...GateOption) *Gate {
	if window < 0 {
		window = 0
	}
	g := &Gate{window: window, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow reports whether cmd may be dispatched, and if so records it as
// the most recent dispatch.
func (g *Gate) Allow(cmd domain.VoiceCommand) bool {
	if cmd == domain.CommandUnrecognized {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.window {
		return false
	}
	g.last = now
	return true
}
