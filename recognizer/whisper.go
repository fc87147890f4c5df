package recognizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// WhisperFileConfig configures the file-based Whisper source.
type WhisperFileConfig struct {
	APIKey   string
	Path     string        // Audio file to transcribe
	Interval time.Duration // Pace of the replayed fragments, defaults to 250ms
}

// WhisperFile transcribes an audio file through the OpenAI Whisper API and
// replays the text as a live stream: growing partials within each sentence,
// a final at each sentence boundary. Whisper has no streaming endpoint, so
// this gives batch transcription the same shape as a realtime recognizer.
type WhisperFile struct {
	cfg    WhisperFileConfig
	client openai.Client
}

func NewWhisperFile(cfg WhisperFileConfig) (*WhisperFile, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper: api key required")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("whisper: audio path required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	return &WhisperFile{
		cfg:    cfg,
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
	}, nil
}

func (w *WhisperFile) Name() string { return "whisper-file" }

func (w *WhisperFile) Start(ctx context.Context, language string) (Session, error) {
	f, err := os.Open(w.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  f,
	}
	if language != "" && language != "auto" {
		params.Language = openai.String(language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", w.cfg.Path, err)
	}
	slog.Info("whisper transcription complete", "path", w.cfg.Path, "chars", len(resp.Text))

	sess := &scriptedSession{
		results: make(chan Result),
		done:    make(chan struct{}),
	}
	go w.replay(ctx, sess, resp.Text, language)
	return sess, nil
}

// replay streams the transcript sentence by sentence, three words at a time.
func (w *WhisperFile) replay(ctx context.Context, sess *scriptedSession, text, language string) {
	defer close(sess.results)

	emit := func(res Result) bool {
		res.Language = language
		select {
		case sess.results <- res:
			return true
		case <-ctx.Done():
			return false
		case <-sess.done:
			return false
		}
	}

	for _, sentence := range sentenceChunks(text) {
		words := strings.Fields(sentence)
		for i := 3; i < len(words); i += 3 {
			select {
			case <-time.After(w.cfg.Interval):
			case <-ctx.Done():
				return
			case <-sess.done:
				return
			}
			if !emit(Result{Text: strings.Join(words[:i], " "), IsFinal: false}) {
				return
			}
		}
		if !emit(Result{Text: sentence, IsFinal: true}) {
			return
		}
	}
}

// sentenceChunks splits text at sentence-ending punctuation, keeping the
// punctuation with its sentence. Whitespace-only chunks are dropped.
func sentenceChunks(text string) []string {
	var chunks []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			chunks = append(chunks, s)
		}
		b.Reset()
	}

	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '?', '!', '…', '。', '？', '！':
			flush()
		}
	}
	flush()
	return chunks
}
