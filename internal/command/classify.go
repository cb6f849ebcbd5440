// Package command maps recognized transcripts to playback commands and
// filters duplicates that arrive too close together.
package command

import (
	"strings"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

// rule maps any of its keywords, found anywhere in the transcript, to a
// command. Rules are checked in order; the first match wins.
type rule struct {
	keywords []string
	command  domain.VoiceCommand
}

var rules = []rule{
	{[]string{"play"}, domain.CommandPlay},
	{[]string{"pause"}, domain.CommandPause},
	{[]string{"skip", "next"}, domain.CommandNext},
	{[]string{"go back", "previous"}, domain.CommandPrevious},
	{[]string{"stop listening"}, domain.CommandStopListening},
}

// Classify returns the command for a transcript. Matching is by
// lower-cased substring, so "replay that" is Play and "play then pause"
// is Play as well.
func Classify(transcript string) domain.VoiceCommand {
	t := strings.ToLower(strings.TrimSpace(transcript))
	if t == "" {
		return domain.CommandUnrecognized
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.command
			}
		}
	}
	return domain.CommandUnrecognized
}
