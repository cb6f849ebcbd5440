// OttoVoice: hands-free, voice-controlled recipe step playback.
//
// Usage:
//
//	ottovoice [-config ottovoice.yaml] [-recipe id] [-listen] [-verbose] [-quiet]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottovoice/internal/capture"
	"github.com/hammamikhairi/ottovoice/internal/config"
	"github.com/hammamikhairi/ottovoice/internal/controller"
	"github.com/hammamikhairi/ottovoice/internal/display"
	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
	"github.com/hammamikhairi/ottovoice/internal/metrics"
	"github.com/hammamikhairi/ottovoice/internal/recipe"
	"github.com/hammamikhairi/ottovoice/internal/recognition"
	"github.com/hammamikhairi/ottovoice/internal/speech"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "ottovoice.yaml", "optional YAML config file")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	recipeID := flag.String("recipe", "", "recipe to load at startup")
	source := flag.String("source", "", "recipe source: memory or spoonacular")
	noSpeech := flag.Bool("no-speech", false, "disable audio output even if a TTS key is set")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	listen := flag.Bool("listen", false, "start listening for voice commands at launch")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	if *recipeID != "" {
		cfg.Recipes.DefaultRecipeID = *recipeID
	}
	if *source != "" {
		cfg.Recipes.Source = *source
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Configure logger.
	logLevel, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using normal)\n", err)
	}
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the prompt stays clean.
	var logOut io.Writer = os.Stderr
	if f := cfg.Logging.File; f != "" && f != "stderr" {
		if dir := filepath.Dir(f); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		fh, err := os.OpenFile(f, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", f, err)
		} else {
			logOut = fh
			defer fh.Close()
		}
	}

	// Redirect Go's default log package (used by the audio backends) to
	// the same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, m, log)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// Wire dependencies.
	var recipes domain.RecipeSource
	switch cfg.Recipes.Source {
	case "spoonacular":
		recipes = recipe.NewSpoonacularSource(cfg.Recipes.SpoonacularKey, log.With("spoonacular"),
			recipe.WithBaseURL(cfg.Recipes.SpoonacularURL),
		)
		if cfg.Recipes.SpoonacularKey == "" {
			log.Info("spoonacular: set %s to enable", config.EnvSpoonacularKey)
		}
	default:
		recipes = recipe.NewMemorySource(log.With("recipes"))
	}

	recognizer := recognition.NewGoogleClient(cfg.Recognition.APIKey, log.With("stt"),
		recognition.WithEndpoint(cfg.Recognition.Endpoint),
		recognition.WithLanguage(cfg.Recognition.Language),
		recognition.WithModel(cfg.Recognition.Model),
		recognition.WithHTTPTimeout(cfg.Recognition.Timeout),
		recognition.WithMetrics(m),
	)
	synth := speech.NewGoogleClient(cfg.Synthesis.APIKey, log.With("tts"),
		speech.WithEndpoint(cfg.Synthesis.Endpoint),
		speech.WithLanguage(cfg.Synthesis.Language),
		speech.WithVoice(cfg.Synthesis.Voice),
		speech.WithSampleRate(cfg.Synthesis.SampleRate),
		speech.WithHTTPTimeout(cfg.Synthesis.Timeout),
		speech.WithMetrics(m),
	)
	if cfg.Recognition.APIKey == "" || cfg.Synthesis.APIKey == "" {
		log.Info("google speech: set %s (or %s / %s) to enable", config.EnvGoogleAPIKey, config.EnvGoogleSpeechKey, config.EnvGoogleTTSKey)
	}

	var player domain.AudioPlayer = speech.NewNoOpPlayer(log)
	if !*noSpeech {
		p, err := speech.NewPlayer(cfg.Synthesis.SampleRate, log.With("player"))
		if err != nil {
			log.Error("audio player init failed, output disabled: %v", err)
		} else {
			player = p
			log.Info("TTS enabled (voice=%s)", synth.Voice())
		}
	}

	mic := capture.NewMalgoMicrophone(cfg.Capture.SampleRate, log.With("mic"))

	// The controller and UI refer to each other; ui is set before any
	// callback can fire.
	var ui *display.UI
	ctrl := controller.New(mic, recognizer, synth, player, log.With("controller"),
		controller.WithDebounce(cfg.Commands.Debounce),
		controller.WithSessionOptions(
			capture.WithDetector(cfg.Capture.Threshold, cfg.Capture.SilenceTimeout),
			capture.WithPreroll(cfg.Capture.Preroll),
		),
		controller.WithMetrics(m),
		controller.WithReporter(func(where, msg string) { ui.ReportError(where, msg) }),
		controller.WithOnChange(func(domain.PlaybackState) { ui.Refresh() }),
		controller.WithOnTranscript(func(text string, _ domain.VoiceCommand, _ bool) { ui.PrintVoice(text) }),
	)
	ui = display.NewUI(ctrl)
	defer ctrl.Close()

	app := &cliApp{
		ctrl:    ctrl,
		recipes: recipes,
		log:     log,
		ui:      ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'listen' for hands-free mode, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.start(ctx, cfg.Recipes.DefaultRecipeID, *listen)
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

func serveMetrics(addr string, m *metrics.Metrics, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics: serving on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics: %v", err)
		}
	}()
	return srv
}
