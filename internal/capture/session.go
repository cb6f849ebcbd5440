package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
	"github.com/hammamikhairi/ottovoice/internal/metrics"
)

// UtteranceFunc receives each utterance flushed by a session. It is
// called from the session's sampling goroutine and must not block on
// Release of the same session.
type UtteranceFunc func(u *domain.Utterance)

// SessionOption configures an AudioSession.
type SessionOption func(*AudioSession)

// WithDetector sets the VAD threshold and silence timeout.
func WithDetector(threshold float64, silenceTimeout time.Duration) SessionOption {
	return func(s *AudioSession) {
		s.detector = NewDetector(threshold, silenceTimeout)
	}
}

// WithPreroll sets how much audio before speech onset is kept in the
// utterance. Audio older than this is discarded while idle.
func WithPreroll(d time.Duration) SessionOption {
	return func(s *AudioSession) { s.preroll = d }
}

// WithClock replaces time.Now for frame timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *AudioSession) { s.now = now }
}

// WithMetrics records session and utterance counters.
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *AudioSession) { s.metrics = m }
}

// AudioSession is one exclusive hold on the microphone. It samples every
// captured frame, runs the detector, and flushes the buffered audio as an
// utterance after each speech-then-silence cycle without stopping the
// recording. Release gives the microphone back.
type AudioSession struct {
	ID string

	stream      domain.AudioStream
	detector    *Detector
	onUtterance UtteranceFunc
	now         func() time.Time
	preroll     time.Duration
	log         *logger.Logger
	metrics     *metrics.Metrics

	cancel      context.CancelFunc
	done        chan struct{}
	releaseOnce sync.Once

	// Owned by the sampling goroutine.
	buf []int16
	seq uint64
}

// Acquire opens the microphone and starts sampling. The returned error
// wraps domain.ErrPermissionDenied when the microphone refused access.
func Acquire(ctx context.Context, mic domain.Microphone, onUtterance UtteranceFunc, log *logger.Logger, opts ...SessionOption) (*AudioSession, error) {
	s := &AudioSession{
		ID:          uuid.NewString(),
		detector:    NewDetector(DefaultThreshold, DefaultSilenceTimeout),
		onUtterance: onUtterance,
		now:         time.Now,
		preroll:     300 * time.Millisecond,
		log:         log,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	stream, err := mic.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening microphone: %w", err)
	}
	s.stream = stream

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.loop(loopCtx)

	s.metrics.SessionStarted()
	s.log.Info("session %s: listening (rate=%d)", s.ID[:8], stream.SampleRate())
	return s, nil
}

// Release stops sampling, closes the stream, and waits for the sampling
// goroutine to exit. Safe to call more than once and on a nil session.
func (s *AudioSession) Release() {
	if s == nil {
		return
	}
	s.releaseOnce.Do(func() {
		s.cancel()
		if err := s.stream.Close(); err != nil {
			s.log.Warn("session %s: closing stream: %v", s.ID[:8], err)
		}
		<-s.done
		s.log.Info("session %s: released", s.ID[:8])
	})
}

func (s *AudioSession) loop(ctx context.Context) {
	defer close(s.done)
	frames := s.stream.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				s.log.Debug("session %s: stream ended", s.ID[:8])
				return
			}
			s.handleFrame(frame)
		}
	}
}

func (s *AudioSession) handleFrame(frame []int16) {
	s.buf = append(s.buf, frame...)

	if s.detector.Feed(frame, s.now()) {
		s.flush()
		return
	}
	if !s.detector.Speaking() {
		s.trimIdle()
	}
}

// trimIdle keeps only the preroll window while nobody is speaking.
func (s *AudioSession) trimIdle() {
	keep := int(s.preroll.Seconds() * float64(s.stream.SampleRate()))
	if keep < 0 {
		keep = 0
	}
	if len(s.buf) <= keep {
		return
	}
	n := copy(s.buf, s.buf[len(s.buf)-keep:])
	s.buf = s.buf[:n]
}

func (s *AudioSession) flush() {
	samples := s.buf
	s.buf = nil
	if len(samples) == 0 {
		return
	}

	wav, err := EncodeWAV(samples, s.stream.SampleRate())
	if err != nil {
		s.log.Error("session %s: encoding utterance: %v", s.ID[:8], err)
		return
	}

	s.seq++
	u := &domain.Utterance{
		ID:         uuid.NewString(),
		Seq:        s.seq,
		Audio:      wav,
		Encoding:   domain.EncodingLinear16,
		SampleRate: s.stream.SampleRate(),
		CapturedAt: s.now(),
	}
	s.metrics.UtteranceEmitted(len(wav))
	s.log.Debug("session %s: utterance #%d (%d samples, %d bytes)", s.ID[:8], u.Seq, len(samples), len(wav))

	if s.onUtterance != nil {
		s.onUtterance(u)
	}
}
