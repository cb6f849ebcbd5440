// Package playback holds the step cursor: which instruction is current,
// and whether it is being read aloud.
package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

// Option configures the cursor.
type Option func(*Cursor)

// WithOnChange registers a callback fired after every state change,
// including the player reporting that a clip ended. It is called without
// the cursor lock held.
func WithOnChange(fn func()) Option {
	return func(c *Cursor) { c.onChange = fn }
}

// Cursor walks an instruction set one step at a time and plays the
// current step through a synthesizer and a player. The index is clamped
// to the available steps; Next and Previous never wrap and never
// auto-play. Safe for concurrent use.
type Cursor struct {
	synth    domain.Synthesizer
	player   domain.AudioPlayer
	log      *logger.Logger
	onChange func()

	mu      sync.Mutex
	steps   *domain.InstructionSet
	index   int
	playing bool
	gen     uint64 // bumped whenever in-flight audio becomes stale
}

// NewCursor creates a cursor with no instructions loaded.
func NewCursor(synth domain.Synthesizer, player domain.AudioPlayer, log *logger.Logger, opts ...Option) *Cursor {
	c := &Cursor{
		synth:  synth,
		player: player,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInstructions replaces the instruction set, stops playback, and
// moves to the first step. The set is read-only to the cursor.
func (c *Cursor) SetInstructions(steps *domain.InstructionSet) {
	c.mu.Lock()
	c.steps = steps
	c.index = 0
	c.playing = false
	c.gen++
	c.mu.Unlock()

	c.player.Stop()
	c.log.Debug("cursor: loaded %d steps", steps.Len())
	c.changed()
}

// Index returns the zero-based current step index.
func (c *Cursor) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len returns the number of loaded steps.
func (c *Cursor) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.Len()
}

// IsPlaying reports whether the current step's audio is playing.
func (c *Cursor) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Current returns the current step.
func (c *Cursor) Current() (domain.Step, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.At(c.index)
}

// Steps returns a copy of the loaded steps.
func (c *Cursor) Steps() []domain.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.Steps()
}

// PlayCurrentStep stops any playing audio, synthesizes the current step,
// and starts playing it. Every call synthesizes afresh. On any failure
// nothing plays, IsPlaying stays false, and the error is returned for the
// caller to log or report.
func (c *Cursor) PlayCurrentStep(ctx context.Context) error {
	c.mu.Lock()
	step, ok := c.steps.At(c.index)
	if !ok {
		c.mu.Unlock()
		return domain.ErrNoSteps
	}
	c.gen++
	gen := c.gen
	wasPlaying := c.playing
	c.playing = false
	c.mu.Unlock()

	c.player.Stop()
	if wasPlaying {
		c.changed()
	}

	c.log.Debug("cursor: synthesizing step %d", step.Ordinal)
	audio, err := c.synth.Synthesize(ctx, step.Text)
	if err != nil {
		return fmt.Errorf("step %d: %w", step.Ordinal, err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("step %d: %w: no audio", step.Ordinal, domain.ErrSynthesisFailed)
	}

	c.mu.Lock()
	if c.gen != gen {
		// Paused, moved, or replayed while synthesizing.
		c.mu.Unlock()
		c.log.Debug("cursor: dropping stale audio for step %d", step.Ordinal)
		return nil
	}
	if err := c.player.Play(audio, func() { c.ended(gen) }); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("step %d: playing: %w", step.Ordinal, err)
	}
	c.playing = true
	c.mu.Unlock()

	c.log.Info("playing step %d", step.Ordinal)
	c.changed()
	return nil
}

// Pause stops audio. The index is unchanged.
func (c *Cursor) Pause() {
	c.mu.Lock()
	c.playing = false
	c.gen++
	c.mu.Unlock()

	c.player.Stop()
	c.changed()
}

// Next stops audio and moves forward one step. At the last step it does
// nothing and returns false.
func (c *Cursor) Next() bool {
	return c.move(+1)
}

// Previous stops audio and moves back one step. At the first step it does
// nothing and returns false.
func (c *Cursor) Previous() bool {
	return c.move(-1)
}

func (c *Cursor) move(delta int) bool {
	c.mu.Lock()
	to := c.index + delta
	if to < 0 || to >= c.steps.Len() {
		c.mu.Unlock()
		return false
	}
	c.index = to
	c.playing = false
	c.gen++
	c.mu.Unlock()

	c.player.Stop()
	c.log.Debug("cursor: moved to step %d", to+1)
	c.changed()
	return true
}

func (c *Cursor) ended(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.playing = false
	c.mu.Unlock()

	c.log.Debug("cursor: playback ended")
	c.changed()
}

func (c *Cursor) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
