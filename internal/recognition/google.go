// Package recognition sends captured utterances to a cloud speech-to-text
// endpoint and returns the best transcript.
package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
	"github.com/hammamikhairi/ottovoice/internal/metrics"
)

// Compile-time interface check.
var _ domain.Recognizer = (*GoogleClient)(nil)

// Request defaults. Encoding and sample rate apply only when the
// utterance does not carry its own format.
const (
	DefaultEndpoint   = "https://speech.googleapis.com/v1/speech:recognize"
	DefaultLanguage   = "en-US"
	DefaultModel      = "command_and_search"
	DefaultEncoding   = domain.EncodingWebMOpus
	DefaultSampleRate = 48000
)

// Option configures the recognition client.
type Option func(*GoogleClient)

// WithEndpoint overrides the recognize URL.
func WithEndpoint(u string) Option {
	return func(c *GoogleClient) { c.endpoint = u }
}

// WithLanguage sets the BCP-47 language code.
func WithLanguage(lang string) Option {
	return func(c *GoogleClient) { c.language = lang }
}

// WithModel sets the recognition model hint.
func WithModel(model string) Option {
	return func(c *GoogleClient) { c.model = model }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *GoogleClient) { c.httpClient.Timeout = d }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *GoogleClient) { c.metrics = m }
}

// GoogleClient calls the Google Speech-to-Text v1 REST API.
type GoogleClient struct {
	apiKey     string
	endpoint   string
	language   string
	model      string
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewGoogleClient creates a recognition client. An empty apiKey is
// allowed; every Recognize call then fails with ErrMissingCredentials.
func NewGoogleClient(apiKey string, log *logger.Logger, opts ...Option) *GoogleClient {
	c := &GoogleClient{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		language: DefaultLanguage,
		model:    DefaultModel,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Wire types ───────────────────────────────────────────────────

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
	Model           string `json:"model,omitempty"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize sends one request for u and returns the top alternative of
// the first result, or "" when the endpoint found no speech. Errors wrap
// domain.ErrRecognitionFailed plus the specific cause.
func (c *GoogleClient) Recognize(ctx context.Context, u *domain.Utterance) (string, error) {
	start := time.Now()
	text, err := c.recognize(ctx, u)
	c.metrics.RecognitionDone(time.Since(start), failureKind(err))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRecognitionFailed, err)
	}
	return text, nil
}

func (c *GoogleClient) recognize(ctx context.Context, u *domain.Utterance) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrMissingCredentials
	}
	if u == nil || len(u.Audio) == 0 {
		return "", errors.New("empty utterance")
	}

	enc := u.Encoding
	if enc == "" {
		enc = DefaultEncoding
	}
	rate := u.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}

	body, err := json.Marshal(recognizeRequest{
		Config: recognitionConfig{
			Encoding:        string(enc),
			SampleRateHertz: rate,
			LanguageCode:    c.language,
			Model:           c.model,
		},
		Audio: recognitionAudio{Content: base64.StdEncoding.EncodeToString(u.Audio)},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	endpoint, err := c.requestURL()
	if err != nil {
		return "", err
	}

	c.log.Debug("recognizing utterance #%d (%d bytes, %s@%d)", u.Seq, len(u.Audio), enc, rate)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "OttoVoice/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrTransport, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	// Google omits "results" entirely when nothing was heard.
	if len(out.Results) == 0 {
		c.log.Debug("utterance #%d: no results", u.Seq)
		return "", nil
	}
	first := out.Results[0]
	if len(first.Alternatives) == 0 {
		return "", fmt.Errorf("%w: result has no alternatives", domain.ErrMalformedResponse)
	}

	transcript := first.Alternatives[0].Transcript
	c.log.Debug("utterance #%d: %q (confidence %.2f)", u.Seq, transcript, first.Alternatives[0].Confidence)
	return transcript, nil
}

func (c *GoogleClient) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// failureKind labels an error for metrics.
func failureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMissingCredentials):
		return "credentials"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
