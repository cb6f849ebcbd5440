package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

func TestMemorySourceList(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src := NewMemorySource(log)
	ctx := context.Background()

	recipes, err := src.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recipes) < 3 {
		t.Fatalf("expected at least 3 recipes, got %d", len(recipes))
	}
	for i := 1; i < len(recipes); i++ {
		if recipes[i-1].Title > recipes[i].Title {
			t.Fatalf("not sorted by title: %q before %q", recipes[i-1].Title, recipes[i].Title)
		}
	}
	for _, r := range recipes {
		if r.Steps == 0 {
			t.Errorf("recipe %s has no steps", r.ID)
		}
	}
}

func TestMemorySourceGet(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src := NewMemorySource(log)
	ctx := context.Background()

	tests := []struct {
		id      string
		wantErr error
	}{
		{"tomato-pasta", nil},
		{"vegetable-stir-fry", nil},
		{"soft-scrambled-eggs", nil},
		{"nonexistent", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := src.Get(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ID != tt.id {
				t.Fatalf("expected ID %s, got %s", tt.id, r.ID)
			}
			steps := r.Instructions.Steps()
			if len(steps) == 0 {
				t.Fatal("recipe has no steps")
			}
			for i, st := range steps {
				if st.Ordinal != i+1 {
					t.Fatalf("step %d has ordinal %d", i, st.Ordinal)
				}
			}
		})
	}
}

func TestMemorySourceSearch(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src := NewMemorySource(log)
	ctx := context.Background()

	tests := []struct {
		query    string
		minCount int
	}{
		{"pasta", 1},
		{"EGGS", 1},
		{"garlic", 2},
		{"nonexistent-query-xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := src.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(results) < tt.minCount {
				t.Fatalf("expected at least %d results for %q, got %d", tt.minCount, tt.query, len(results))
			}
			if tt.minCount == 0 && len(results) != 0 {
				t.Fatalf("expected no results for %q, got %d", tt.query, len(results))
			}
		})
	}
}
