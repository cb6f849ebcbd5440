package domain

import "time"

// PlaybackState is a snapshot of the controller's observable flags.
// Listening and Playing are independent axes and may overlap.
type PlaybackState struct {
	CurrentStepIndex int
	StepCount        int
	IsPlaying        bool
	IsListening      bool
	IsProcessing     bool
}

// AudioEncoding names an audio payload format as understood by the
// recognition endpoint.
type AudioEncoding string

const (
	EncodingWebMOpus AudioEncoding = "WEBM_OPUS"
	EncodingLinear16 AudioEncoding = "LINEAR16"
	EncodingMP3      AudioEncoding = "MP3"
)

// Utterance is one bounded audio segment captured between speech onset
// and the following silence. It is consumed exactly once.
type Utterance struct {
	ID         string
	Seq        uint64 // emission order within a listening session
	Audio      []byte
	Encoding   AudioEncoding
	SampleRate int
	CapturedAt time.Time
}
