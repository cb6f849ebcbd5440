// Package controller drives hands-free step playback: it owns the
// listening session, sends each utterance for recognition, and turns
// transcripts into cursor moves.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hammamikhairi/ottovoice/internal/capture"
	"github.com/hammamikhairi/ottovoice/internal/command"
	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
	"github.com/hammamikhairi/ottovoice/internal/metrics"
	"github.com/hammamikhairi/ottovoice/internal/playback"
)

// Feature names passed to the error reporter.
const (
	FeatureMicrophone   = "Microphone"
	FeatureSpeechToText = "Speech-to-Text"
	FeatureTextToSpeech = "Text-to-Speech"
)

// Option configures the controller.
type Option func(*Controller)

// WithReporter sets the callback for user-facing failures.
func WithReporter(r domain.ErrorReporter) Option {
	return func(c *Controller) { c.report = r }
}

// WithOnChange registers a callback fired with the new state after every
// change. It runs on whichever goroutine caused the change.
func WithOnChange(fn func(domain.PlaybackState)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithOnTranscript registers a callback fired for every non-empty
// transcript with the command it produced and whether it was dispatched.
func WithOnTranscript(fn func(text string, cmd domain.VoiceCommand, dispatched bool)) Option {
	return func(c *Controller) { c.onTranscript = fn }
}

// WithDebounce sets the minimum spacing between voice commands.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.gate = command.NewGate(d) }
}

// WithGate replaces the debounce gate.
func WithGate(g *command.Gate) Option {
	return func(c *Controller) { c.gate = g }
}

// WithSessionOptions passes options to every listening session.
func WithSessionOptions(opts ...capture.SessionOption) Option {
	return func(c *Controller) { c.sessionOpts = append(c.sessionOpts, opts...) }
}

// WithMetrics records command counters and is handed to each session.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller is the hands-free playback controller. Listening and playing
// are independent; processing is true while any recognition request is
// outstanding. Safe for concurrent use.
type Controller struct {
	mic         domain.Microphone
	recognizer  domain.Recognizer
	cursor      *playback.Cursor
	gate        *command.Gate
	sessionOpts []capture.SessionOption
	log         *logger.Logger
	metrics     *metrics.Metrics
	report      domain.ErrorReporter
	onChange    func(domain.PlaybackState)

	onTranscript func(string, domain.VoiceCommand, bool)

	// Recognition runs on base, which outlives listening sessions so
	// results arriving after StopListening are still handled.
	base       context.Context
	cancelBase context.CancelFunc
	inflight   sync.WaitGroup

	lifecycle sync.Mutex // serializes StartListening / StopListening

	mu         sync.Mutex
	session    *capture.AudioSession
	listening  bool
	processing int
}

// New creates a controller with no instructions loaded.
func New(mic domain.Microphone, recognizer domain.Recognizer, synth domain.Synthesizer, player domain.AudioPlayer, log *logger.Logger, opts ...Option) *Controller {
	base, cancel := context.WithCancel(context.Background())
	c := &Controller{
		mic:        mic,
		recognizer: recognizer,
		gate:       command.NewGate(command.DefaultDebounce),
		log:        log,
		base:       base,
		cancelBase: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cursor = playback.NewCursor(synth, player, log.With("cursor"), playback.WithOnChange(c.notify))
	return c
}

// ── Instructions ─────────────────────────────────────────────────

// LoadInstructions replaces the step list and resets to the first step.
func (c *Controller) LoadInstructions(steps *domain.InstructionSet) {
	c.cursor.SetInstructions(steps)
}

// Steps returns a copy of the loaded steps.
func (c *Controller) Steps() []domain.Step {
	return c.cursor.Steps()
}

// CurrentStep returns the step under the cursor.
func (c *Controller) CurrentStep() (domain.Step, bool) {
	return c.cursor.Current()
}

// State returns a snapshot of the controller state.
func (c *Controller) State() domain.PlaybackState {
	c.mu.Lock()
	listening, processing := c.listening, c.processing > 0
	c.mu.Unlock()
	return domain.PlaybackState{
		CurrentStepIndex: c.cursor.Index(),
		StepCount:        c.cursor.Len(),
		IsPlaying:        c.cursor.IsPlaying(),
		IsListening:      listening,
		IsProcessing:     processing,
	}
}

// ── Listening ────────────────────────────────────────────────────

// StartListening acquires the microphone and starts emitting utterances.
// A session already running is released first. On failure listening
// reverts to false and a denied microphone is reported; there is no retry.
func (c *Controller) StartListening() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.releaseSession()

	c.setListening(true)

	opts := append([]capture.SessionOption{capture.WithMetrics(c.metrics)}, c.sessionOpts...)
	sess, err := capture.Acquire(c.base, c.mic, c.handleUtterance, c.log.With("capture"), opts...)
	if err != nil {
		c.setListening(false)
		c.log.Warn("start listening: %v", err)
		if errors.Is(err, domain.ErrPermissionDenied) {
			c.reportErr(FeatureMicrophone, err)
		}
		return err
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	return nil
}

// StopListening releases the microphone. In-flight recognition requests
// are not cancelled. Safe to call when not listening.
func (c *Controller) StopListening() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.releaseSession() {
		c.setListening(false)
		c.log.Info("stopped listening")
	}
}

// releaseSession drops the current session, if any. Caller holds lifecycle.
func (c *Controller) releaseSession() bool {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()

	if sess == nil {
		return false
	}
	sess.Release()
	return true
}

func (c *Controller) setListening(v bool) {
	c.mu.Lock()
	changed := c.listening != v
	c.listening = v
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// ── Recognition ──────────────────────────────────────────────────

// handleUtterance runs on the session's sampling goroutine and must not
// block it.
func (c *Controller) handleUtterance(u *domain.Utterance) {
	c.mu.Lock()
	c.processing++
	c.mu.Unlock()
	c.notify()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.recognize(u)
	}()
}

func (c *Controller) recognize(u *domain.Utterance) {
	short := u.ID
	if len(short) > 8 {
		short = short[:8]
	}
	c.log.Debug("utterance #%d (%s): recognizing", u.Seq, short)

	text, err := c.recognizer.Recognize(c.base, u)

	c.mu.Lock()
	c.processing--
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("utterance #%d (%s): %v", u.Seq, short, err)
		if errors.Is(err, domain.ErrMissingCredentials) {
			c.reportErr(FeatureSpeechToText, err)
		}
		return
	}
	if text == "" {
		c.log.Debug("utterance #%d (%s): %v", u.Seq, short, domain.ErrRecognitionEmpty)
	}

	cmd, ok := c.HandleTranscript(c.base, text)
	c.log.Debug("utterance #%d (%s): %q -> %s (dispatched=%v)", u.Seq, short, text, cmd, ok)
	if text != "" && c.onTranscript != nil {
		c.onTranscript(text, cmd, ok)
	}
}

// ── Commands ─────────────────────────────────────────────────────

// HandleTranscript classifies a transcript and dispatches the command
// unless it is unrecognized or debounced. It reports the command and
// whether it was dispatched.
func (c *Controller) HandleTranscript(ctx context.Context, transcript string) (domain.VoiceCommand, bool) {
	cmd := command.Classify(transcript)
	if cmd == domain.CommandUnrecognized {
		return cmd, false
	}
	if !c.gate.Allow(cmd) {
		c.metrics.CommandDebounced()
		c.log.Debug("debounced %s", cmd)
		return cmd, false
	}
	c.metrics.CommandDispatched(cmd.String())
	c.Dispatch(ctx, cmd)
	return cmd, true
}

// Dispatch performs exactly one command. It does not consult the
// debounce gate. Failures are logged; only missing credentials are
// reported. The returned error is for callers that want to show it.
func (c *Controller) Dispatch(ctx context.Context, cmd domain.VoiceCommand) error {
	c.log.Info("command: %s", cmd)
	switch cmd {
	case domain.CommandPlay:
		if err := c.cursor.PlayCurrentStep(ctx); err != nil {
			c.log.Warn("play: %v", err)
			if errors.Is(err, domain.ErrMissingCredentials) {
				c.reportErr(FeatureTextToSpeech, err)
			}
			return err
		}
	case domain.CommandPause:
		c.cursor.Pause()
	case domain.CommandNext:
		if !c.cursor.Next() {
			c.log.Debug("next: already at last step")
		}
	case domain.CommandPrevious:
		if !c.cursor.Previous() {
			c.log.Debug("previous: already at first step")
		}
	case domain.CommandStopListening:
		c.StopListening()
	}
	return nil
}

// Close stops listening and playback, cancels outstanding recognition,
// and waits for it to finish.
func (c *Controller) Close() {
	c.StopListening()
	c.cursor.Pause()
	c.cancelBase()
	c.inflight.Wait()
}

func (c *Controller) reportErr(feature string, err error) {
	if c.report == nil || !domain.UserFacing(err) {
		return
	}
	msg := "API key is not configured"
	if errors.Is(err, domain.ErrPermissionDenied) {
		msg = "microphone access was denied"
	}
	c.report(feature, msg)
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.State())
	}
}
