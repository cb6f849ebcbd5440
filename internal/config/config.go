// Package config resolves runtime settings from defaults, an optional YAML
// file, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env var names.
const (
	EnvGoogleAPIKey     = "GOOGLE_API_KEY"
	EnvGoogleSpeechKey  = "GOOGLE_SPEECH_KEY" // overrides GOOGLE_API_KEY for recognition
	EnvGoogleTTSKey     = "GOOGLE_TTS_KEY"    // overrides GOOGLE_API_KEY for synthesis
	EnvSpoonacularKey   = "SPOONACULAR_API_KEY"
	EnvVADThreshold     = "OTTOVOICE_VAD_THRESHOLD"
	EnvSilenceTimeoutMS = "OTTOVOICE_SILENCE_TIMEOUT_MS"
	EnvDebounceMS       = "OTTOVOICE_DEBOUNCE_MS"
	EnvLogLevel         = "OTTOVOICE_LOG_LEVEL"
	EnvMetricsAddr      = "OTTOVOICE_METRICS_ADDR"
)

// Config is the complete application configuration.
type Config struct {
	Recognition RecognitionConfig `yaml:"recognition"`
	Synthesis   SynthesisConfig   `yaml:"synthesis"`
	Capture     CaptureConfig     `yaml:"capture"`
	Commands    CommandsConfig    `yaml:"commands"`
	Recipes     RecipesConfig     `yaml:"recipes"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// RecognitionConfig configures the speech-to-text client.
type RecognitionConfig struct {
	APIKey   string        `yaml:"api_key"`
	Endpoint string        `yaml:"endpoint"`
	Language string        `yaml:"language"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SynthesisConfig configures the text-to-speech client.
type SynthesisConfig struct {
	APIKey     string        `yaml:"api_key"`
	Endpoint   string        `yaml:"endpoint"`
	Language   string        `yaml:"language"`
	Voice      string        `yaml:"voice"`
	SampleRate int           `yaml:"sample_rate"`
	Timeout    time.Duration `yaml:"timeout"`
}

// CaptureConfig configures the microphone and voice activity detection.
type CaptureConfig struct {
	SampleRate     int           `yaml:"sample_rate"`
	Threshold      float64       `yaml:"threshold"`
	SilenceTimeout time.Duration `yaml:"silence_timeout"`
	Preroll        time.Duration `yaml:"preroll"`
}

// CommandsConfig configures voice command handling.
type CommandsConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// RecipesConfig selects and configures the recipe source.
type RecipesConfig struct {
	Source          string `yaml:"source"` // "memory" or "spoonacular"
	SpoonacularKey  string `yaml:"spoonacular_key"`
	SpoonacularURL  string `yaml:"spoonacular_url"`
	DefaultRecipeID string `yaml:"default_recipe"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Recognition: RecognitionConfig{
			Endpoint: "https://speech.googleapis.com/v1/speech:recognize",
			Language: "en-US",
			Model:    "command_and_search",
			Timeout:  15 * time.Second,
		},
		Synthesis: SynthesisConfig{
			Endpoint:   "https://texttospeech.googleapis.com/v1/text:synthesize",
			Language:   "en-US",
			Voice:      "en-US-Standard-C",
			SampleRate: 24000,
			Timeout:    30 * time.Second,
		},
		Capture: CaptureConfig{
			SampleRate:     48000,
			Threshold:      0.1,
			SilenceTimeout: 1500 * time.Millisecond,
			Preroll:        300 * time.Millisecond,
		},
		Commands: CommandsConfig{
			Debounce: 2000 * time.Millisecond,
		},
		Recipes: RecipesConfig{
			Source:          "memory",
			SpoonacularURL:  "https://api.spoonacular.com",
			DefaultRecipeID: "tomato-pasta",
		},
		Logging: LoggingConfig{
			Level: "normal",
			File:  ".otto-logs/ottovoice.log",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if path
// is non-empty and the file exists), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// optional
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if key := env(EnvGoogleAPIKey); key != "" {
		if c.Recognition.APIKey == "" {
			c.Recognition.APIKey = key
		}
		if c.Synthesis.APIKey == "" {
			c.Synthesis.APIKey = key
		}
	}
	if key := env(EnvGoogleSpeechKey); key != "" {
		c.Recognition.APIKey = key
	}
	if key := env(EnvGoogleTTSKey); key != "" {
		c.Synthesis.APIKey = key
	}
	if key := env(EnvSpoonacularKey); key != "" {
		c.Recipes.SpoonacularKey = key
	}
	if v := env(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := env(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}

	if v := env(EnvVADThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVADThreshold, err)
		}
		c.Capture.Threshold = f
	}
	if v := env(EnvSilenceTimeoutMS); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSilenceTimeoutMS, err)
		}
		c.Capture.SilenceTimeout = time.Duration(ms) * time.Millisecond
	}
	if v := env(EnvDebounceMS); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebounceMS, err)
		}
		c.Commands.Debounce = time.Duration(ms) * time.Millisecond
	}
	return nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Capture.Threshold <= 0 || c.Capture.Threshold >= 1 {
		return fmt.Errorf("capture.threshold must be in (0, 1), got %g", c.Capture.Threshold)
	}
	if c.Capture.SilenceTimeout <= 0 {
		return fmt.Errorf("capture.silence_timeout must be positive, got %s", c.Capture.SilenceTimeout)
	}
	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("capture.sample_rate must be positive, got %d", c.Capture.SampleRate)
	}
	if c.Commands.Debounce < 0 {
		return fmt.Errorf("commands.debounce must not be negative, got %s", c.Commands.Debounce)
	}
	switch c.Recipes.Source {
	case "memory", "spoonacular":
	default:
		return fmt.Errorf("recipes.source must be memory or spoonacular, got %q", c.Recipes.Source)
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
