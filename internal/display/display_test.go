package display

import (
	"strings"
	"testing"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

func TestStatusFlags(t *testing.T) {
	tests := []struct {
		name  string
		state domain.PlaybackState
		want  []string
	}{
		{"nothing loaded", domain.PlaybackState{}, []string{"step -/-", "idle"}},
		{"idle on step", domain.PlaybackState{CurrentStepIndex: 1, StepCount: 5}, []string{"step 2/5", "idle"}},
		{
			"all axes",
			domain.PlaybackState{CurrentStepIndex: 4, StepCount: 5, IsListening: true, IsProcessing: true, IsPlaying: true},
			[]string{"step 5/5", "● LISTENING", "… PROCESSING", "▶ PLAYING"},
		},
		{
			"listening and playing",
			domain.PlaybackState{StepCount: 3, IsListening: true, IsPlaying: true},
			[]string{"step 1/3", "● LISTENING", "▶ PLAYING"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := statusFlags(tt.state)
			var got []string
			for _, f := range flags {
				got = append(got, f.text)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("flags = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	if got := titleStr(domain.PlaybackState{}); got != "OttoVoice" {
		t.Fatalf("title = %q", got)
	}
	got := titleStr(domain.PlaybackState{CurrentStepIndex: 0, StepCount: 3, IsPlaying: true})
	if !strings.Contains(got, "step 1/3") || !strings.HasSuffix(got, "▶") {
		t.Fatalf("title = %q", got)
	}
}

func TestCentre(t *testing.T) {
	out := centre("ab\nabcd\n", 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "   ") {
			t.Errorf("line %q not padded by 3", l)
		}
	}
}
