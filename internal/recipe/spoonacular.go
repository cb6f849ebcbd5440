package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*SpoonacularSource)(nil)

// DefaultSpoonacularURL is the public Spoonacular API base.
const DefaultSpoonacularURL = "https://api.spoonacular.com"

// SpoonacularOption configures the Spoonacular source.
type SpoonacularOption func(*SpoonacularSource)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) SpoonacularOption {
	return func(s *SpoonacularSource) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithPageSize sets how many results List and Search return.
func WithPageSize(n int) SpoonacularOption {
	return func(s *SpoonacularSource) { s.pageSize = n }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) SpoonacularOption {
	return func(s *SpoonacularSource) { s.httpClient.Timeout = d }
}

// SpoonacularSource reads recipes and their analyzed instructions from the
// Spoonacular REST API. It is read-only. Recipe IDs are Spoonacular's
// numeric IDs in decimal.
type SpoonacularSource struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	log        *logger.Logger
}

// NewSpoonacularSource creates a source. An empty apiKey is allowed;
// every call then fails with domain.ErrMissingCredentials.
func NewSpoonacularSource(apiKey string, log *logger.Logger, opts ...SpoonacularOption) *SpoonacularSource {
	s := &SpoonacularSource{
		apiKey:   apiKey,
		baseURL:  DefaultSpoonacularURL,
		pageSize: 10,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Wire types ───────────────────────────────────────────────────

type searchResponse struct {
	Results []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
}

type informationResponse struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type instructionSection struct {
	Name  string `json:"name"`
	Steps []struct {
		Number int    `json:"number"`
		Step   string `json:"step"`
	} `json:"steps"`
}

// List returns popular recipes. Step counts are not known until Get.
func (s *SpoonacularSource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	return s.Search(ctx, "")
}

// Search queries complexSearch. Step counts are not known until Get.
func (s *SpoonacularSource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	params := url.Values{}
	params.Set("number", strconv.Itoa(s.pageSize))
	params.Set("instructionsRequired", "true")
	if q := strings.TrimSpace(query); q != "" {
		params.Set("query", q)
	}

	var out searchResponse
	if err := s.get(ctx, "/recipes/complexSearch", params, &out); err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}

	summaries := make([]domain.RecipeSummary, 0, len(out.Results))
	for _, r := range out.Results {
		summaries = append(summaries, domain.RecipeSummary{ID: strconv.Itoa(r.ID), Title: r.Title})
	}
	s.log.Debug("spoonacular: %d results for %q", len(summaries), query)
	return summaries, nil
}

// Get fetches a recipe's title and analyzed instructions. Steps from all
// instruction sections are concatenated and renumbered 1..n.
func (s *SpoonacularSource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}

	var info informationResponse
	if err := s.get(ctx, "/recipes/"+id+"/information", url.Values{"includeNutrition": {"false"}}, &info); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", id, err)
	}

	var sections []instructionSection
	if err := s.get(ctx, "/recipes/"+id+"/analyzedInstructions", nil, &sections); err != nil {
		return nil, fmt.Errorf("recipe %s instructions: %w", id, err)
	}

	var texts []string
	for _, sec := range sections {
		for _, st := range sec.Steps {
			if t := strings.TrimSpace(st.Step); t != "" {
				texts = append(texts, t)
			}
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("recipe %s: %w", id, domain.ErrNoSteps)
	}

	s.log.Debug("spoonacular: recipe %s %q has %d steps", id, info.Title, len(texts))
	return &domain.Recipe{
		ID:           id,
		Title:        info.Title,
		Instructions: domain.InstructionsFromText(texts...),
	}, nil
}

func (s *SpoonacularSource) get(ctx context.Context, path string, params url.Values, dst any) error {
	if s.apiKey == "" {
		return domain.ErrMissingCredentials
	}

	u, err := url.Parse(s.baseURL + path)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("apiKey", s.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "OttoVoice/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: rejected by server", domain.ErrMissingCredentials)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransport, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}
