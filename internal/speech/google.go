// Package speech synthesizes step text to audio and plays it.
package speech

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
var _ domain.Synthesizer = (*GoogleClient)(nil)

// GoogleOption configures the Google TTS client.
type GoogleOption func(*GoogleClient)

// WithEndpoint overrides the synthesize URL.
func WithEndpoint(u string) GoogleOption {
	return func(c *GoogleClient) { c.endpoint = u }
}

// WithVoice sets the TTS voice name.
func WithVoice(voice string) GoogleOption {
	return func(c *GoogleClient) { c.voice = voice }
}

// WithLanguage sets the voice language code.
func WithLanguage(lang string) GoogleOption {
	return func(c *GoogleClient) { c.language = lang }
}

// WithSampleRate sets the requested output sample rate.
func WithSampleRate(hz int) GoogleOption {
	return func(c *GoogleClient) { c.sampleRate = hz }
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) GoogleOption {
	return func(c *GoogleClient) { c.httpClient.Timeout = d }
}

// WithMetrics records synthesis counts and latency.
func WithMetrics(m *metrics.Metrics) GoogleOption {
	return func(c *GoogleClient) { c.metrics = m }
}

// GoogleClient handles text-to-speech synthesis via the Google Cloud
// Text-to-Speech v1 REST API.
type GoogleClient struct {
	apiKey     string
	endpoint   string
	language   string
	voice      string
	sampleRate int
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewGoogleClient creates a TTS client. An empty apiKey is allowed; every
// Synthesize call then fails with domain.ErrMissingCredentials.
func NewGoogleClient(apiKey string, log *logger.Logger, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		language:   DefaultLanguage,
		voice:      DefaultVoice,
		sampleRate: SampleRate,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the configured voice name.
func (c *GoogleClient) Voice() string { return c.voice }

// ── Wire types ───────────────────────────────────────────────────

type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type audioConfig struct {
	AudioEncoding   string `json:"audioEncoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize converts text to MP3 audio. Every call makes one request;
// nothing is cached. Errors wrap domain.ErrSynthesisFailed plus the cause.
func (c *GoogleClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()
	audio, err := c.synthesize(ctx, text)
	c.metrics.SynthesisDone(time.Since(start), failureKind(err))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesisFailed, err)
	}
	return audio, nil
}

func (c *GoogleClient) synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	body, err := json.Marshal(synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{LanguageCode: c.language, Name: c.voice},
		AudioConfig: audioConfig{
			AudioEncoding:   DefaultAudioEncoding,
			SampleRateHertz: c.sampleRate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	c.log.Debug("google tts: synthesizing %d chars with voice %s", len(text), c.voice)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "OttoVoice/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrTransport, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if out.AudioContent == "" {
		return nil, fmt.Errorf("%w: no audioContent", domain.ErrMalformedResponse)
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: audioContent: %v", domain.ErrMalformedResponse, err)
	}

	c.log.Debug("google tts: got %d bytes of audio", len(audio))
	return audio, nil
}

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
