package speech

// Google Text-to-Speech request defaults.
const (
	DefaultEndpoint      = "https://texttospeech.googleapis.com/v1/text:synthesize"
	DefaultLanguage      = "en-US"
	DefaultVoice         = "en-US-Standard-C"
	DefaultAudioEncoding = "MP3"
)

// Output parameters. The decoder always yields 16-bit stereo, so the
// output context is opened with two channels at the synthesis rate.
const (
	SampleRate   = 24000
	ChannelCount = 2
)
