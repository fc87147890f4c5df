// Package types provides shared type definitions for the application.
package types

// CaptionUpdate is one rendered caption block delivered to consumers.
type CaptionUpdate struct {
	SessionID string   `json:"sessionId"`
	Text      string   `json:"text"`      // Lines joined by newlines
	Lines     []string `json:"lines"`     // Exactly the display line count
	IsFinal   bool     `json:"isFinal"`   // Whether the source fragment was final
	Language  string   `json:"language"`  // BCP-47 code of the active layout
	Timestamp int64    `json:"timestamp"` // Unix timestamp in milliseconds
}

// CaptionStatus reports the state of a running caption session.
type CaptionStatus struct {
	Active     bool   `json:"active"`
	SessionID  string `json:"sessionId"`
	Language   string `json:"language"`
	Source     string `json:"source"`     // Recognizer source name
	Duration   int64  `json:"duration"`   // Running duration in seconds
	FinalCount int    `json:"finalCount"` // Finalized transcripts retained
}

// Settings is the persisted application configuration.
type Settings struct {
	Display      DisplaySettings    `json:"display"`
	Recognizer   RecognizerSettings `json:"recognizer"`
	Sink         SinkSettings       `json:"sink"`
	Language     string             `json:"language"`
	AutoLanguage bool               `json:"auto_language"`
}

// DisplaySettings controls caption layout and pacing.
type DisplaySettings struct {
	MaxLines            int `json:"max_lines,omitempty"`
	MaxFinalTranscripts int `json:"max_final_transcripts,omitempty"`
	ThrottleIntervalMs  int `json:"throttle_interval_ms,omitempty"`
}

// RecognizerSettings selects and configures the speech-to-text source.
type RecognizerSettings struct {
	Provider       string `json:"provider"` // "scripted", "deepgram", "whisper-file"
	DeepgramAPIKey string `json:"deepgram_api_key,omitempty"`
	OpenAIAPIKey   string `json:"openai_api_key,omitempty"`
	Model          string `json:"model,omitempty"`
	AudioPath      string `json:"audio_path,omitempty"`
}

// SinkSettings configures where rendered blocks are delivered.
type SinkSettings struct {
	WebSocketURL string `json:"websocket_url,omitempty"`
}
