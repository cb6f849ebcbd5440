package speech

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/ottovoice/internal/logger"
)

type fakeVoice struct {
	mu      sync.Mutex
	playing bool
	closed  bool
}

func (v *fakeVoice) Play()  { v.mu.Lock(); v.playing = true; v.mu.Unlock() }
func (v *fakeVoice) Pause() { v.mu.Lock(); v.playing = false; v.mu.Unlock() }
func (v *fakeVoice) Close() error {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return nil
}
func (v *fakeVoice) IsPlaying() bool { v.mu.Lock(); defer v.mu.Unlock(); return v.playing }

// finish simulates the clip reaching its end.
func (v *fakeVoice) finish() { v.Pause() }

func (v *fakeVoice) isClosed() bool { v.mu.Lock(); defer v.mu.Unlock(); return v.closed }

type fakeMixer struct {
	mu     sync.Mutex
	voices []*fakeVoice
}

func (m *fakeMixer) NewVoice(io.Reader) voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := &fakeVoice{}
	m.voices = append(m.voices, v)
	return v
}

func (m *fakeMixer) voice(i int) *fakeVoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices[i]
}

func fixedDecode(rate int) decodeFunc {
	return func(audio []byte) (io.Reader, int, error) {
		return bytes.NewReader(audio), rate, nil
	}
}

func newTestPlayer(decode decodeFunc) (*Player, *fakeMixer) {
	m := &fakeMixer{}
	p := newPlayer(m, decode, SampleRate, logger.New(logger.LevelOff, nil))
	p.poll = time.Millisecond
	return p, m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPlayerEndedCallbackFires(t *testing.T) {
	p, m := newTestPlayer(fixedDecode(SampleRate))

	ended := make(chan struct{})
	if err := p.Play([]byte("clip"), func() { close(ended) }); err != nil {
		t.Fatal(err)
	}
	if !p.IsPlaying() {
		t.Fatal("should be playing")
	}

	m.voice(0).finish()
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("onEnded not called")
	}
	waitFor(t, m.voice(0).isClosed)
	if p.IsPlaying() {
		t.Fatal("should be idle after clip ends")
	}
}

func TestPlayerStopSuppressesCallback(t *testing.T) {
	p, m := newTestPlayer(fixedDecode(SampleRate))

	var fired atomic.Bool
	if err := p.Play([]byte("clip"), func() { fired.Store(true) }); err != nil {
		t.Fatal(err)
	}
	p.Stop()

	waitFor(t, m.voice(0).isClosed)
	if fired.Load() {
		t.Fatal("onEnded must not fire after Stop")
	}
	if p.IsPlaying() {
		t.Fatal("should be idle after Stop")
	}
}

func TestPlayerNewClipReplacesOld(t *testing.T) {
	p, m := newTestPlayer(fixedDecode(SampleRate))

	var first atomic.Bool
	p.Play([]byte("a"), func() { first.Store(true) })
	p.Play([]byte("b"), nil)

	waitFor(t, m.voice(0).isClosed)
	if first.Load() {
		t.Fatal("replaced clip must not report ended")
	}
	if !m.voice(1).IsPlaying() {
		t.Fatal("second clip should be playing")
	}
	p.Stop()
}

func TestPlayerStopWhenIdle(t *testing.T) {
	p, _ := newTestPlayer(fixedDecode(SampleRate))
	p.Stop()
	p.Stop()
	if p.IsPlaying() {
		t.Fatal("idle player reports playing")
	}
}

func TestPlayerRejectsBadAudio(t *testing.T) {
	t.Run("decode error", func(t *testing.T) {
		p, m := newTestPlayer(func([]byte) (io.Reader, int, error) {
			return nil, 0, errors.New("bad frame")
		})
		if err := p.Play([]byte("x"), nil); err == nil {
			t.Fatal("expected error")
		}
		if len(m.voices) != 0 {
			t.Fatal("no voice should be created")
		}
	})
	t.Run("rate mismatch", func(t *testing.T) {
		p, m := newTestPlayer(fixedDecode(44100))
		if err := p.Play([]byte("x"), nil); err == nil {
			t.Fatal("expected error")
		}
		if len(m.voices) != 0 {
			t.Fatal("no voice should be created")
		}
	})
	t.Run("empty mp3", func(t *testing.T) {
		if _, _, err := decodeMP3(nil); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestNoOpPlayerEndsImmediately(t *testing.T) {
	n := NewNoOpPlayer(logger.New(logger.LevelOff, nil))
	ended := make(chan struct{})
	if err := n.Play([]byte("x"), func() { close(ended) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("onEnded not called")
	}
	n.Stop()
}
