package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInstructions = errors.New("invalid instruction steps")
	ErrNoSteps             = errors.New("no instruction steps loaded")

	// Voice pipeline failures. Only ErrPermissionDenied and
	// ErrMissingCredentials are ever shown to the user.
	ErrPermissionDenied   = errors.New("microphone access denied")
	ErrMissingCredentials = errors.New("api key missing")
	ErrTransport          = errors.New("transport failure")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrRecognitionEmpty   = errors.New("no transcript found")
	ErrRecognitionFailed  = errors.New("speech recognition failed")
	ErrSynthesisFailed    = errors.New("speech synthesis failed")
)

// UserFacing reports whether err belongs to the small set of failures the
// UI should hear about.
func UserFacing(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrMissingCredentials)
}
