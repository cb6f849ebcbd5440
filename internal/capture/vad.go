// Package capture owns the microphone during a listening session and
// splits its audio into utterances using a fixed-threshold energy
// detector.
package capture

import "time"

// Detector defaults. The threshold is a fraction of full scale.
const (
	DefaultThreshold      = 0.1
	DefaultSilenceTimeout = 1500 * time.Millisecond
)

// PeakEnergy returns max |sample| / full scale for a frame, in [0, 1].
func PeakEnergy(samples []int16) float64 {
	var peak int32
	for _, s := range samples {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	e := float64(peak) / 32768.0
	if e > 1 {
		e = 1
	}
	return e
}

// Detector is a speech/silence state machine fed one frame at a time.
// There is no noise-floor calibration: the threshold is fixed.
// Not safe for concurrent use; the session loop owns it.
type Detector struct {
	threshold      float64
	silenceTimeout time.Duration

	speaking     bool
	silenceStart time.Time // zero when no silence timer is running
}

// NewDetector returns a detector. Non-positive arguments select the
// defaults.
func NewDetector(threshold float64, silenceTimeout time.Duration) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if silenceTimeout <= 0 {
		silenceTimeout = DefaultSilenceTimeout
	}
	return &Detector{threshold: threshold, silenceTimeout: silenceTimeout}
}

// Feed processes one frame observed at now. It returns true exactly once
// per speech-then-silence cycle: on the first frame where silence has
// lasted longer than the timeout.
func (d *Detector) Feed(samples []int16, now time.Time) bool {
	if PeakEnergy(samples) > d.threshold {
		d.speaking = true
		d.silenceStart = time.Time{}
		return false
	}
	if !d.speaking {
		return false
	}
	if d.silenceStart.IsZero() {
		d.silenceStart = now
		return false
	}
	if now.Sub(d.silenceStart) > d.silenceTimeout {
		d.speaking = false
		d.silenceStart = time.Time{}
		return true
	}
	return false
}

// Speaking reports whether the detector is inside a speech segment.
func (d *Detector) Speaking() bool { return d.speaking }
