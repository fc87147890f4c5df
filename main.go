package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.hudcap.dev/hudcap/captions"
	"go.hudcap.dev/hudcap/config"
	"go.hudcap.dev/hudcap/display"
	"go.hudcap.dev/hudcap/langdetect"
	"go.hudcap.dev/hudcap/recognizer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		sourceName = flag.String("source", "", "recognizer source: scripted, deepgram, whisper-file")
		language   = flag.String("lang", "", "BCP-47 language code")
		wsURL      = flag.String("ws", "", "websocket overlay URL, stdout when empty")
		audioPath  = flag.String("audio", "", "audio file for the whisper-file source")
		autoLang   = flag.Bool("auto", false, "switch language automatically on finalized transcripts")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	slog.Info("starting hudcap", "version", version, "commit", commit, "date", date)

	if err := run(*sourceName, *language, *wsURL, *audioPath, *autoLang); err != nil {
		slog.Error("run", "error", err)
		os.Exit(1)
	}
}

func run(sourceName, language, wsURL, audioPath string, autoLang bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override persisted settings.
	if sourceName == "" {
		sourceName = cfg.Recognizer.Provider
	}
	if language == "" {
		language = cfg.Language
	}
	if wsURL == "" {
		wsURL = cfg.Sink.WebSocketURL
	}
	if audioPath == "" {
		audioPath = cfg.Recognizer.AudioPath
	}
	autoLang = autoLang || cfg.AutoLanguage

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := buildRegistry(cfg, audioPath)
	if err != nil {
		return err
	}

	source := registry.Get(sourceName)
	if source == nil {
		return fmt.Errorf("recognizer source not available: %s", sourceName)
	}

	sink, err := buildSink(ctx, wsURL)
	if err != nil {
		return err
	}
	defer sink.Close()

	svcCfg := captions.ServiceConfig{
		Source: source,
		Sink:   sink,
		Processor: captions.Config{
			MaxLines:            cfg.Display.MaxLines,
			MaxFinalTranscripts: cfg.Display.MaxFinalTranscripts,
			ThrottleInterval:    time.Duration(cfg.Display.ThrottleIntervalMs) * time.Millisecond,
		},
	}
	if autoLang {
		svcCfg.Detector = langdetect.NewDetector()
	}

	svc, err := captions.NewService(svcCfg)
	if err != nil {
		return fmt.Errorf("create caption service: %w", err)
	}

	if err := svc.Start(ctx, language); err != nil {
		return fmt.Errorf("start captions: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := svc.Stop(); err != nil {
			slog.Error("stop captions", "error", err)
		}
	}()

	go func() {
		for err := range svc.Errors() {
			slog.Warn("caption delivery", "error", err)
		}
	}()

	finals := 0
	for update := range svc.Updates() {
		if update.IsFinal {
			finals++
		}
	}
	slog.Info("caption session finished", "finals", finals)
	return nil
}

func buildRegistry(cfg *config.Config, audioPath string) (*recognizer.Registry, error) {
	registry := recognizer.NewRegistry()
	registry.Register(&recognizer.Scripted{
		Script:   demoScript(),
		Interval: 200 * time.Millisecond,
	})

	deepgramKey := cfg.Recognizer.DeepgramAPIKey
	if deepgramKey == "" {
		deepgramKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if deepgramKey != "" {
		dg, err := recognizer.NewDeepgram(recognizer.DeepgramConfig{
			APIKey: deepgramKey,
			Model:  cfg.Recognizer.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("init deepgram: %w", err)
		}
		registry.Register(dg)
	}

	openaiKey := cfg.Recognizer.OpenAIAPIKey
	if openaiKey == "" {
		openaiKey = os.Getenv("OPENAI_API_KEY")
	}
	if openaiKey != "" && audioPath != "" {
		wf, err := recognizer.NewWhisperFile(recognizer.WhisperFileConfig{
			APIKey: openaiKey,
			Path:   audioPath,
		})
		if err != nil {
			return nil, fmt.Errorf("init whisper: %w", err)
		}
		registry.Register(wf)
	}

	slog.Info("recognizer sources ready", "count", len(registry.List()))
	return registry, nil
}

func buildSink(ctx context.Context, wsURL string) (display.Sink, error) {
	if wsURL == "" {
		return display.NewWriterSink(os.Stdout, ""), nil
	}
	sink, err := display.DialWebSocket(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect overlay: %w", err)
	}
	slog.Info("overlay connected", "url", wsURL)
	return sink, nil
}

// demoScript simulates a short dictation for the scripted source.
func demoScript() []recognizer.Result {
	return []recognizer.Result{
		{Text: "welcome", IsFinal: false},
		{Text: "welcome to the", IsFinal: false},
		{Text: "welcome to the live caption", IsFinal: false},
		{Text: "welcome to the live caption demo", IsFinal: true},
		{Text: "everything you", IsFinal: false},
		{Text: "everything you see here is", IsFinal: false},
		{Text: "everything you see here is rendered from", IsFinal: false},
		{Text: "everything you see here is rendered from a streaming transcript", IsFinal: true},
		{Text: "partial updates are", IsFinal: false},
		{Text: "partial updates are throttled so the", IsFinal: false},
		{Text: "partial updates are throttled so the display stays calm", IsFinal: true},
	}
}
