package command

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

// Action is what a typed line asks the app to do.
type Action int

const (
	ActionUnknown  Action = iota
	ActionPlayback        // Command holds the playback command
	ActionListen
	ActionSteps
	ActionRecipes // Arg holds an optional search query
	ActionLoad    // Arg holds a recipe ID or list number
	ActionStatus
	ActionHelp
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionPlayback:
		return "playback"
	case ActionListen:
		return "listen"
	case ActionSteps:
		return "steps"
	case ActionRecipes:
		return "recipes"
	case ActionLoad:
		return "load"
	case ActionStatus:
		return "status"
	case ActionHelp:
		return "help"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Input is a parsed line of typed input.
type Input struct {
	Action  Action
	Command domain.VoiceCommand
	Arg     string
}

type inputRule struct {
	regex   *regexp.Regexp
	action  Action
	command domain.VoiceCommand
}

// Anchored rules for typed input. A capture group, if present, becomes Arg.
var inputRules = []inputRule{
	{regexp.MustCompile(`(?i)^(listen|mic|l)$`), ActionListen, domain.CommandUnrecognized},
	{regexp.MustCompile(`(?i)^(stop|stop listening|mute)$`), ActionPlayback, domain.CommandStopListening},
	{regexp.MustCompile(`(?i)^(play|p|read|repeat)$`), ActionPlayback, domain.CommandPlay},
	{regexp.MustCompile(`(?i)^(pause|wait)$`), ActionPlayback, domain.CommandPause},
	{regexp.MustCompile(`(?i)^(next|n|skip)$`), ActionPlayback, domain.CommandNext},
	{regexp.MustCompile(`(?i)^(back|b|prev|previous|go back)$`), ActionPlayback, domain.CommandPrevious},
	{regexp.MustCompile(`(?i)^(steps|list steps)$`), ActionSteps, domain.CommandUnrecognized},
	{regexp.MustCompile(`(?i)^(?:recipes|list|search)(?:\s+(.+))?$`), ActionRecipes, domain.CommandUnrecognized},
	{regexp.MustCompile(`(?i)^(?:load|open|use)\s+(\S+)$`), ActionLoad, domain.CommandUnrecognized},
	{regexp.MustCompile(`^(\d{1,2})$`), ActionLoad, domain.CommandUnrecognized},
	{regexp.MustCompile(`(?i)^(status|where)$`), ActionStatus, domain.CommandUnrecognized},
	{regexp.MustCompile(`(?i)^(help|h|\?)$`), ActionHelp, domain.CommandUnrecognized},
	{regexp.MustCompile(`(?i)^(quit|exit|q)$`), ActionQuit, domain.CommandUnrecognized},
}

// ParseInput interprets a typed line. Lines matching no typed rule fall
// back to the voice classifier, so "please go back" works typed as well.
func ParseInput(line string) Input {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Input{}
	}

	for _, r := range inputRules {
		m := r.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		in := Input{Action: r.action, Command: r.command}
		if r.action == ActionRecipes || r.action == ActionLoad {
			in.Arg = strings.TrimSpace(m[1])
		}
		return in
	}

	if cmd := Classify(trimmed); cmd != domain.CommandUnrecognized {
		return Input{Action: ActionPlayback, Command: cmd}
	}
	return Input{Arg: trimmed}
}
