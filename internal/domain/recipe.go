// Package domain defines the core types and interfaces for the voice
// playback assistant. All other packages depend on domain; domain depends
// on nothing.
package domain

import "fmt"

// Step is one instruction unit of a recipe.
type Step struct {
	Ordinal int // 1-based, strictly increasing within a set
	Text    string
}

// InstructionSet is an ordered, immutable list of steps.
type InstructionSet struct {
	steps []Step
}

// NewInstructionSet validates and copies steps. Ordinals must be >= 1 and
// strictly increasing (which also makes them unique).
func NewInstructionSet(steps []Step) (*InstructionSet, error) {
	prev := 0
	for i, s := range steps {
		if s.Ordinal < 1 {
			return nil, fmt.Errorf("%w: step %d has ordinal %d", ErrInvalidInstructions, i, s.Ordinal)
		}
		if s.Ordinal <= prev {
			return nil, fmt.Errorf("%w: ordinal %d after %d", ErrInvalidInstructions, s.Ordinal, prev)
		}
		prev = s.Ordinal
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return &InstructionSet{steps: out}, nil
}

// InstructionsFromText numbers plain instruction strings 1..n.
func InstructionsFromText(texts ...string) *InstructionSet {
	steps := make([]Step, len(texts))
	for i, t := range texts {
		steps[i] = Step{Ordinal: i + 1, Text: t}
	}
	return &InstructionSet{steps: steps}
}

// Len returns the number of steps. A nil set has zero steps.
func (s *InstructionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

// At returns the step at index i.
func (s *InstructionSet) At(i int) (Step, bool) {
	if s == nil || i < 0 || i >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[i], true
}

// Steps returns a copy of all steps.
func (s *InstructionSet) Steps() []Step {
	if s == nil {
		return nil
	}
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Recipe is a recipe as delivered by a RecipeSource.
type Recipe struct {
	ID           string
	Title        string
	Instructions *InstructionSet
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID    string
	Title string
	Steps int
}
