package domain

// VoiceCommand is the fixed set of actions a transcript can map to.
type VoiceCommand int

const (
	CommandUnrecognized VoiceCommand = iota
	CommandPlay
	CommandPause
	CommandNext
	CommandPrevious
	CommandStopListening
)

// String returns a human-readable command name.
func (c VoiceCommand) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandNext:
		return "next"
	case CommandPrevious:
		return "previous"
	case CommandStopListening:
		return "stop_listening"
	default:
		return "unrecognized"
	}
}
