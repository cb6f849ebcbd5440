package command

import (
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestGateDropsCommandsInsideWindow(t *testing.T) {
	clock := &manualClock{t: time.Unix(1000, 0)}
	g := NewGate(DefaultDebounce, WithClock(clock.Now))

	if !g.Allow(domain.CommandNext) {
		t.Fatal("first command must pass")
	}
	clock.Advance(1999 * time.Millisecond)
	if g.Allow(domain.CommandPause) {
		t.Fatal("different command inside the window must be dropped")
	}
	if g.Allow(domain.CommandNext) {
		t.Fatal("same command inside the window must be dropped")
	}

	// Dropped commands do not extend the window.
	clock.Advance(1 * time.Millisecond)
	if !g.Allow(domain.CommandPlay) {
		t.Fatal("command at exactly 2000ms must pass")
	}
}

func TestGateIgnoresUnrecognized(t *testing.T) {
	clock := &manualClock{t: time.Unix(0, 0)}
	g := NewGate(DefaultDebounce, WithClock(clock.Now))

	if g.Allow(domain.CommandUnrecognized) {
		t.Fatal("unrecognized must never pass")
	}
	// Unrecognized did not start a window.
	if !g.Allow(domain.CommandPlay) {
		t.Fatal("play must pass after an unrecognized command")
	}
	clock.Advance(500 * time.Millisecond)
	g.Allow(domain.CommandUnrecognized)
	clock.Advance(1600 * time.Millisecond)
	if !g.Allow(domain.CommandPause) {
		t.Fatal("unrecognized must not refresh the window")
	}
}

func TestGateZeroWindow(t *testing.T) {
	g := NewGate(-time.Second)
	for i := 0; i < 3; i++ {
		if !g.Allow(domain.CommandNext) {
			t.Fatalf("call %d dropped with zero window", i)
		}
	}
}
