package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.hudcap.dev/hudcap/internal/types"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Language != "en-US" {
		t.Errorf("Language = %q, want %q", cfg.Language, "en-US")
	}
	if cfg.Recognizer.Provider != "scripted" {
		t.Errorf("Recognizer.Provider = %q, want %q", cfg.Recognizer.Provider, "scripted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := &Config{Settings: types.Settings{
		Language:     "ja-JP",
		AutoLanguage: true,
		Display: types.DisplaySettings{
			MaxLines:           4,
			ThrottleIntervalMs: 150,
		},
		Recognizer: types.RecognizerSettings{
			Provider:       "deepgram",
			DeepgramAPIKey: "dg-key",
			Model:          "nova-3",
		},
		Sink: types.SinkSettings{WebSocketURL: "ws://localhost:9000/captions"},
	}}

	if err := cfg.saveTo(path); err != nil {
		t.Fatalf("saveTo: %v", err)
	}

	loaded, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if loaded.Language != "ja-JP" || !loaded.AutoLanguage {
		t.Errorf("language settings = %q/%v, want ja-JP/true", loaded.Language, loaded.AutoLanguage)
	}
	if loaded.Display.MaxLines != 4 || loaded.Display.ThrottleIntervalMs != 150 {
		t.Errorf("display settings = %+v, want MaxLines 4, ThrottleIntervalMs 150", loaded.Display)
	}
	if loaded.Recognizer.Provider != "deepgram" || loaded.Recognizer.DeepgramAPIKey != "dg-key" {
		t.Errorf("recognizer settings = %+v", loaded.Recognizer)
	}
	if loaded.Sink.WebSocketURL != "ws://localhost:9000/captions" {
		t.Errorf("sink url = %q", loaded.Sink.WebSocketURL)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", `{"recognizer":{"provider":"telepathy"}}`},
		{"negative max lines", `{"display":{"max_lines":-1}}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := loadFrom(path); err == nil {
				t.Error("loadFrom should fail")
			}
		})
	}
}
