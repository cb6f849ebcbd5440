package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

// Compile-time interface check.
var _ domain.Microphone = (*MalgoMicrophone)(nil)

const frameQueueCap = 64

// MalgoMicrophone captures mono 16-bit PCM from the default input device
// through miniaudio.
type MalgoMicrophone struct {
	sampleRate int
	log        *logger.Logger
}

// NewMalgoMicrophone creates a microphone that captures at sampleRate Hz.
func NewMalgoMicrophone(sampleRate int, log *logger.Logger) *MalgoMicrophone {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &MalgoMicrophone{sampleRate: sampleRate, log: log}
}

// Open initialises the audio context and capture device and starts
// delivering frames. Any failure to reach the device is reported as
// domain.ErrPermissionDenied: on desktop systems a denied or missing
// microphone is indistinguishable at this layer.
func (m *MalgoMicrophone) Open(ctx context.Context) (domain.AudioStream, error) {
	mCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		m.log.Debug("malgo: %s", msg)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: audio context: %v", domain.ErrPermissionDenied, err)
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.SampleRate = uint32(m.sampleRate)
	devCfg.Capture.Format = malgo.FormatS16
	devCfg.Capture.Channels = 1
	devCfg.Alsa.NoMMap = 1

	st := &malgoStream{
		sampleRate: m.sampleRate,
		frames:     make(chan []int16, frameQueueCap),
		mCtx:       mCtx,
		log:        m.log,
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_ []byte, raw []byte, _ uint32) {
			if len(raw) == 0 || st.closed.Load() {
				return
			}
			n := len(raw) / 2
			pcm := make([]int16, n)
			for i := 0; i < n; i++ {
				pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
			}
			select {
			case st.frames <- pcm:
			default:
				st.drops.Add(1)
			}
		},
	}

	device, err := malgo.InitDevice(mCtx.Context, devCfg, callbacks)
	if err != nil {
		_ = mCtx.Uninit()
		mCtx.Free()
		return nil, fmt.Errorf("%w: capture device: %v", domain.ErrPermissionDenied, err)
	}
	st.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mCtx.Uninit()
		mCtx.Free()
		return nil, fmt.Errorf("%w: starting capture: %v", domain.ErrPermissionDenied, err)
	}

	m.log.Debug("malgo: capture started (rate=%d)", m.sampleRate)
	return st, nil
}

type malgoStream struct {
	sampleRate int
	frames     chan []int16
	mCtx       *malgo.AllocatedContext
	device     *malgo.Device
	log        *logger.Logger

	closed    atomic.Bool
	drops     atomic.Int64
	closeOnce sync.Once
}

func (s *malgoStream) Frames() <-chan []int16 { return s.frames }

func (s *malgoStream) SampleRate() int { return s.sampleRate }

// Close stops the device and frees the audio context. The frames channel
// is left open; readers stop on their own context.
func (s *malgoStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.device.Stop()
		s.device.Uninit()
		if uerr := s.mCtx.Uninit(); uerr != nil && err == nil {
			err = uerr
		}
		s.mCtx.Free()
		if d := s.drops.Load(); d > 0 {
			s.log.Debug("malgo: dropped %d frames during session", d)
		}
	})
	return err
}
