package domain

import "context"

// RecipeSource provides recipes. Implementations can be in-memory or
// backed by a third-party recipe API.
type RecipeSource interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Search(ctx context.Context, query string) ([]RecipeSummary, error)
}

// AudioStream is a live microphone capture. Frames delivers mono PCM
// chunks until the stream is closed.
type AudioStream interface {
	Frames() <-chan []int16
	SampleRate() int
	Close() error
}

// Microphone opens exclusive capture streams. Open fails with an error
// wrapping ErrPermissionDenied when access is refused.
type Microphone interface {
	Open(ctx context.Context) (AudioStream, error)
}

// Recognizer turns an utterance into its best transcript. An empty string
// with a nil error means the endpoint found nothing.
type Recognizer interface {
	Recognize(ctx context.Context, u *Utterance) (string, error)
}

// Synthesizer converts text to playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioPlayer plays synthesized audio. Play returns once playback has
// started; onEnded fires when it finishes on its own (not after Stop).
type AudioPlayer interface {
	Play(audio []byte, onEnded func()) error
	Stop()
}

// ErrorReporter surfaces a user-facing failure. where names the feature
// ("Microphone", "Text-to-Speech"), message is human readable.
type ErrorReporter func(where, message string)
