package speech

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

// Compile-time interface check.
var _ domain.AudioPlayer = (*Player)(nil)

// voice is one playing stream. *oto.Player satisfies it.
type voice interface {
	Play()
	IsPlaying() bool
	Pause()
	Close() error
}

// mixer creates voices from decoded PCM.
type mixer interface {
	NewVoice(pcm io.Reader) voice
}

// decodeFunc turns encoded audio into 16-bit LE stereo PCM and reports its
// sample rate.
type decodeFunc func(audio []byte) (io.Reader, int, error)

type otoMixer struct{ ctx *oto.Context }

func (m otoMixer) NewVoice(pcm io.Reader) voice { return m.ctx.NewPlayer(pcm) }

func decodeMP3(audio []byte) (io.Reader, int, error) {
	if len(audio) == 0 {
		return nil, 0, errors.New("empty audio")
	}
	dec, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return nil, 0, fmt.Errorf("decoding mp3: %w", err)
	}
	return dec, dec.SampleRate(), nil
}

// Player plays MP3 audio through the system output. At most one clip
// plays at a time; starting a new one stops the previous one without
// firing its ended callback.
type Player struct {
	mixer      mixer
	decode     decodeFunc
	sampleRate int
	poll       time.Duration
	log        *logger.Logger

	mu     sync.Mutex
	active voice  // currently playing, nil when idle
	gen    uint64 // bumped on every Play and Stop
}

// NewPlayer creates an audio player running at sampleRate Hz and
// initializes the system audio context. Only one context may exist per
// process. Returns an error if the audio device is unavailable.
func NewPlayer(sampleRate int, log *logger.Logger) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", sampleRate, ChannelCount)
	return newPlayer(otoMixer{ctx: ctx}, decodeMP3, sampleRate, log), nil
}

func newPlayer(m mixer, decode decodeFunc, sampleRate int, log *logger.Logger) *Player {
	return &Player{
		mixer:      m,
		decode:     decode,
		sampleRate: sampleRate,
		poll:       10 * time.Millisecond,
		log:        log,
	}
}

// Play decodes audio and starts playing it without blocking. onEnded is
// called once from another goroutine when the clip finishes on its own;
// it is not called if Stop or another Play interrupts the clip.
func (p *Player) Play(audio []byte, onEnded func()) error {
	pcm, rate, err := p.decode(audio)
	if err != nil {
		return err
	}
	if rate != p.sampleRate {
		return fmt.Errorf("audio is %d Hz, output runs at %d Hz", rate, p.sampleRate)
	}

	v := p.mixer.NewVoice(pcm)

	p.mu.Lock()
	prev := p.active
	p.gen++
	gen := p.gen
	p.active = v
	p.mu.Unlock()

	if prev != nil {
		prev.Pause()
	}

	v.Play()
	p.log.Debug("audio player: playing clip %d (%d bytes)", gen, len(audio))

	go p.watch(v, gen, onEnded)
	return nil
}

// watch waits for v to finish, then fires onEnded if v is still current.
func (p *Player) watch(v voice, gen uint64, onEnded func()) {
	for v.IsPlaying() {
		time.Sleep(p.poll)
	}

	p.mu.Lock()
	current := p.gen == gen
	if current {
		p.active = nil
	}
	p.mu.Unlock()

	if err := v.Close(); err != nil {
		p.log.Debug("audio player: closing clip %d: %v", gen, err)
	}
	if current && onEnded != nil {
		onEnded()
	}
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.active = nil
	p.gen++
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// IsPlaying reports whether a clip is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}
