package domain

import (
	"errors"
	"testing"
)

func TestNewInstructionSet(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
	}{
		{"empty", nil, false},
		{"ordered", []Step{{1, "a"}, {2, "b"}, {5, "c"}}, false},
		{"zero ordinal", []Step{{0, "a"}}, true},
		{"duplicate", []Step{{1, "a"}, {1, "b"}}, true},
		{"descending", []Step{{2, "a"}, {1, "b"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewInstructionSet(tt.steps)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInstructions) {
					t.Fatalf("expected ErrInvalidInstructions, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if set.Len() != len(tt.steps) {
				t.Fatalf("len = %d, want %d", set.Len(), len(tt.steps))
			}
		})
	}
}

func TestInstructionSetIsImmutable(t *testing.T) {
	in := []Step{{1, "boil water"}}
	set, err := NewInstructionSet(in)
	if err != nil {
		t.Fatal(err)
	}
	in[0].Text = "changed"
	got := set.Steps()
	got[0].Text = "also changed"

	s, ok := set.At(0)
	if !ok || s.Text != "boil water" {
		t.Fatalf("set was mutated through a caller slice: %+v", s)
	}
}

func TestInstructionsFromText(t *testing.T) {
	set := InstructionsFromText("one", "two", "three")
	if set.Len() != 3 {
		t.Fatalf("len = %d", set.Len())
	}
	s, _ := set.At(2)
	if s.Ordinal != 3 || s.Text != "three" {
		t.Fatalf("unexpected step %+v", s)
	}
	if _, ok := set.At(3); ok {
		t.Fatal("At past the end returned ok")
	}

	var nilSet *InstructionSet
	if nilSet.Len() != 0 {
		t.Fatal("nil set should be empty")
	}
}

func TestUserFacing(t *testing.T) {
	if !UserFacing(ErrPermissionDenied) || !UserFacing(ErrMissingCredentials) {
		t.Fatal("permission and credential errors must be user facing")
	}
	if UserFacing(ErrTransport) || UserFacing(ErrMalformedResponse) {
		t.Fatal("transient errors must not be user facing")
	}
}
