package command

import (
	"testing"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		input   string
		action  Action
		command domain.VoiceCommand
		arg     string
	}{
		// Listening
		{"listen", ActionListen, domain.CommandUnrecognized, ""},
		{"MIC", ActionListen, domain.CommandUnrecognized, ""},
		{"stop", ActionPlayback, domain.CommandStopListening, ""},
		{"stop listening", ActionPlayback, domain.CommandStopListening, ""},

		// Playback
		{"play", ActionPlayback, domain.CommandPlay, ""},
		{"p", ActionPlayback, domain.CommandPlay, ""},
		{"repeat", ActionPlayback, domain.CommandPlay, ""},
		{"pause", ActionPlayback, domain.CommandPause, ""},
		{"next", ActionPlayback, domain.CommandNext, ""},
		{"n", ActionPlayback, domain.CommandNext, ""},
		{"back", ActionPlayback, domain.CommandPrevious, ""},
		{"b", ActionPlayback, domain.CommandPrevious, ""},

		// Falls back to the voice classifier.
		{"please go back", ActionPlayback, domain.CommandPrevious, ""},
		{"skip this one", ActionPlayback, domain.CommandNext, ""},
		{"play then pause", ActionPlayback, domain.CommandPlay, ""},

		// Recipes
		{"recipes", ActionRecipes, domain.CommandUnrecognized, ""},
		{"search  garlic bread ", ActionRecipes, domain.CommandUnrecognized, "garlic bread"},
		{"load tomato-pasta", ActionLoad, domain.CommandUnrecognized, "tomato-pasta"},
		{"use 715538", ActionLoad, domain.CommandUnrecognized, "715538"},
		{"2", ActionLoad, domain.CommandUnrecognized, "2"},
		{"steps", ActionSteps, domain.CommandUnrecognized, ""},

		// Misc
		{"status", ActionStatus, domain.CommandUnrecognized, ""},
		{"?", ActionHelp, domain.CommandUnrecognized, ""},
		{"help", ActionHelp, domain.CommandUnrecognized, ""},
		{"quit", ActionQuit, domain.CommandUnrecognized, ""},
		{"q", ActionQuit, domain.CommandUnrecognized, ""},

		// Unknown
		{"", ActionUnknown, domain.CommandUnrecognized, ""},
		{"how long to boil", ActionUnknown, domain.CommandUnrecognized, "how long to boil"},
		{"load", ActionUnknown, domain.CommandUnrecognized, "load"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseInput(tt.input)
			if got.Action != tt.action || got.Command != tt.command || got.Arg != tt.arg {
				t.Errorf("ParseInput(%q) = {%s %s %q}, want {%s %s %q}",
					tt.input, got.Action, got.Command, got.Arg, tt.action, tt.command, tt.arg)
			}
		})
	}
}
