// Package recipe provides recipe source implementations.
package recipe

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
	src.seed()
	return src
}

// List returns summaries of all available recipes, sorted by title.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.recipes))

	out := make([]domain.RecipeSummary, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, summarize(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// Search returns recipes whose title or any step contains the query.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching recipes for: %s", q)

	var out []domain.RecipeSummary
	for _, r := range s.recipes {
		if matches(r, q) {
			out = append(out, summarize(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func matches(r *domain.Recipe, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) {
		return true
	}
	for _, st := range r.Instructions.Steps() {
		if strings.Contains(strings.ToLower(st.Text), query) {
			return true
		}
	}
	return false
}

func summarize(r *domain.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{ID: r.ID, Title: r.Title, Steps: r.Instructions.Len()}
}

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	recipes := []*domain.Recipe{
		{
			ID:    "tomato-pasta",
			Title: "Weeknight Tomato Pasta",
			Instructions: domain.InstructionsFromText(
				"Bring a large pot of salted water to a rolling boil.",
				"Add the spaghetti and cook until al dente, about nine minutes. Save a cup of the pasta water.",
				"Meanwhile, warm olive oil in a pan over medium heat and cook sliced garlic until just golden.",
				"Add the crushed tomatoes and a pinch of chili flakes. Simmer for ten minutes.",
				"Toss the drained pasta in the sauce, loosening with pasta water, and finish with basil.",
			),
		},
		{
			ID:    "vegetable-stir-fry",
			Title: "Vegetable Stir Fry",
			Instructions: domain.InstructionsFromText(
				"If serving with rice, start the rice first.",
				"Slice the bell pepper, cut the broccoli into small florets, and julienne the carrot. Mince the garlic and grate the ginger.",
				"Mix soy sauce, sesame oil, and cornstarch with two tablespoons of water. Set aside.",
				"Heat the wok on high until it just starts to smoke, then add the oil.",
				"Stir-fry broccoli and carrot for two minutes, then add the pepper and snap peas for two more.",
				"Push the vegetables aside, fry the garlic and ginger for thirty seconds, then toss everything together.",
				"Pour in the sauce and toss until glossy. Serve immediately over rice.",
			),
		},
		{
			ID:    "soft-scrambled-eggs",
			Title: "Soft Scrambled Eggs",
			Instructions: domain.InstructionsFromText(
				"Whisk three eggs with a pinch of salt until no streaks remain.",
				"Melt butter in a nonstick pan over low heat.",
				"Add the eggs and stir slowly with a spatula, pulling curds from the edges.",
				"Take the pan off the heat while the eggs still look slightly wet. Serve right away.",
			),
		},
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d recipes", len(recipes))
}
