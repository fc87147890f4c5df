package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const deepgramHost = "api.deepgram.com"

// DeepgramConfig configures the Deepgram streaming source.
type DeepgramConfig struct {
	APIKey     string
	Model      string // Defaults to "nova-3"
	SampleRate int    // Defaults to 16000
	Channels   int    // Defaults to 1
}

// Deepgram streams linear16 audio to the Deepgram realtime API over a
// websocket and yields interim and final transcripts.
type Deepgram struct {
	cfg DeepgramConfig
}

func NewDeepgram(cfg DeepgramConfig) (*Deepgram, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepgram: api key required")
	}
	if cfg.Model == "" {
		cfg.Model = "nova-3"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &Deepgram{cfg: cfg}, nil
}

func (d *Deepgram) Name() string { return "deepgram" }

func (d *Deepgram) Start(ctx context.Context, language string) (Session, error) {
	q := url.Values{}
	q.Set("model", d.cfg.Model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(d.cfg.SampleRate))
	q.Set("channels", strconv.Itoa(d.cfg.Channels))
	q.Set("interim_results", "true")
	if language != "" {
		q.Set("language", language)
	}

	u := url.URL{Scheme: "wss", Host: deepgramHost, Path: "/v1/listen", RawQuery: q.Encode()}

	header := http.Header{}
	header.Set("Authorization", "Token "+d.cfg.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial deepgram: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial deepgram: %w", err)
	}

	sess := &deepgramSession{
		conn:    conn,
		results: make(chan Result),
	}
	go sess.readLoop(ctx, language)

	slog.Info("deepgram session started",
		"model", d.cfg.Model, "language", language, "sample_rate", d.cfg.SampleRate)
	return sess, nil
}

type deepgramSession struct {
	conn    *websocket.Conn
	results chan Result

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (s *deepgramSession) Feed(pcm []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

func (s *deepgramSession) Results() <-chan Result { return s.results }

// Close asks the server to flush remaining audio and tears the socket down.
func (s *deepgramSession) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
		s.writeMu.Unlock()
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
		s.closeErr = err
	})
	return s.closeErr
}

func (s *deepgramSession) readLoop(ctx context.Context, language string) {
	defer close(s.results)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				slog.Warn("deepgram read", "error", err)
			}
			return
		}

		res, ok := parseDeepgramMessage(data)
		if !ok {
			continue
		}
		if res.Language == "" {
			res.Language = language
		}

		select {
		case s.results <- res:
		case <-ctx.Done():
			return
		}
	}
}

// deepgramResponse mirrors the subset of the realtime API response we use.
type deepgramResponse struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseDeepgramMessage extracts a Result from a raw server message. Messages
// that are not transcripts, or transcripts with no text, are skipped.
func parseDeepgramMessage(data []byte) (Result, bool) {
	var msg deepgramResponse
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("deepgram unmarshal", "error", err)
		return Result{}, false
	}
	if msg.Type != "Results" || len(msg.Channel.Alternatives) == 0 {
		return Result{}, false
	}

	alt := msg.Channel.Alternatives[0]
	if alt.Transcript == "" {
		return Result{}, false
	}
	return Result{
		Text:       alt.Transcript,
		IsFinal:    msg.IsFinal,
		Confidence: alt.Confidence,
	}, true
}
