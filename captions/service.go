package captions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.hudcap.dev/hudcap/display"
	"go.hudcap.dev/hudcap/internal/types"
	"go.hudcap.dev/hudcap/recognizer"
)

// LanguageDetector classifies transcript text, returning a lowercase ISO
// 639-1 code or an empty string when inconclusive.
type LanguageDetector interface {
	Detect(text string) string
}

// ServiceConfig configures a caption Service.
type ServiceConfig struct {
	Source recognizer.Source
	Sink   display.Sink

	// Detector enables automatic language switching on finalized
	// transcripts. May be nil.
	Detector LanguageDetector

	// Processor configures the underlying caption processor. Language and
	// OnPendingUpdate are set by the service.
	Processor Config
}

// Service runs one live caption session: it pulls transcript fragments from
// a recognizer, feeds them through a Processor, and pushes every emitted
// block to the sink and the Updates channel.
type Service struct {
	cfg  ServiceConfig
	proc *Processor

	mu        sync.Mutex
	running   bool
	finished  bool // Stop was called or the stream drained; no new Start
	closed    bool // channels are closed, set only by run
	sessionID string
	startedAt time.Time
	session   recognizer.Session
	cancel    context.CancelFunc

	updates chan types.CaptionUpdate
	errors  chan error
}

// NewService creates a caption service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("recognizer source required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("display sink required")
	}
	return &Service{
		cfg:     cfg,
		updates: make(chan types.CaptionUpdate, 64),
		errors:  make(chan error, 8),
	}, nil
}

// Updates delivers every rendered caption block. The channel closes when the
// recognizer stream ends or the service is stopped.
func (s *Service) Updates() <-chan types.CaptionUpdate { return s.updates }

// Errors delivers non-fatal delivery failures.
func (s *Service) Errors() <-chan error { return s.errors }

// Start begins captioning in the given language.
func (s *Service) Start(ctx context.Context, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("caption session already running")
	}
	if s.finished {
		return fmt.Errorf("caption service finished, create a new one")
	}

	procCfg := s.cfg.Processor
	procCfg.Language = language
	procCfg.OnPendingUpdate = s.pendingReady
	s.proc = NewProcessor(procCfg)

	ctx, cancel := context.WithCancel(ctx)
	session, err := s.cfg.Source.Start(ctx, language)
	if err != nil {
		cancel()
		return fmt.Errorf("start recognizer: %w", err)
	}

	s.running = true
	s.sessionID = uuid.New().String()
	s.startedAt = time.Now()
	s.session = session
	s.cancel = cancel

	go s.run(session)

	slog.Info("caption session started",
		"session", s.sessionID, "source", s.cfg.Source.Name(), "language", language)
	return nil
}

// Stop ends the session. The Updates channel closes once the recognizer
// stream drains.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	// Marking the service finished here closes the window where a Start
	// between Stop and the stream draining would launch a second run
	// goroutine and double-close the channels.
	s.running = false
	s.finished = true
	session := s.session
	cancel := s.cancel
	elapsed := time.Since(s.startedAt)
	id := s.sessionID
	s.mu.Unlock()

	cancel()
	err := session.Close()
	slog.Info("caption session stopped", "session", id, "duration", elapsed)
	return err
}

// Status reports the current session state.
func (s *Service) Status() types.CaptionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := types.CaptionStatus{
		Active:    s.running,
		SessionID: s.sessionID,
		Source:    s.cfg.Source.Name(),
	}
	if s.proc != nil {
		status.Language = s.proc.Language()
		status.FinalCount = len(s.proc.FinalTranscriptHistory())
	}
	if s.running {
		status.Duration = int64(time.Since(s.startedAt).Seconds())
	}
	return status
}

func (s *Service) run(session recognizer.Session) {
	for res := range session.Results() {
		if res.IsFinal && s.cfg.Detector != nil {
			if code := s.cfg.Detector.Detect(res.Text); code != "" &&
				!strings.HasPrefix(strings.ToLower(s.proc.Language()), code) {
				slog.Info("detected language switch", "code", code)
				s.proc.ChangeLanguage(code)
			}
		}

		if block, ok := s.proc.Process(res.Text, res.IsFinal); ok {
			s.deliver(block, res.IsFinal)
		}
	}

	// Flush a throttled update the timer has not announced yet.
	if block, ok := s.proc.PendingUpdate(); ok {
		s.deliver(block, false)
	}

	// Channel close races with timer-goroutine deliveries, so both happen
	// under the mutex.
	s.mu.Lock()
	s.running = false
	s.finished = true
	s.closed = true
	close(s.updates)
	close(s.errors)
	s.mu.Unlock()
}

// pendingReady runs on the throttle timer goroutine when a coalesced partial
// update becomes available.
func (s *Service) pendingReady() {
	if block, ok := s.proc.PendingUpdate(); ok {
		s.deliver(block, false)
	}
}

func (s *Service) deliver(block string, isFinal bool) {
	if err := s.cfg.Sink.Render(block); err != nil {
		slog.Error("render caption block", "error", err)
		s.sendError(fmt.Errorf("render block: %w", err))
	}

	update := types.CaptionUpdate{
		Text:      block,
		Lines:     strings.Split(block, "\n"),
		IsFinal:   isFinal,
		Language:  s.proc.Language(),
		Timestamp: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	update.SessionID = s.sessionID

	select {
	case s.updates <- update:
	default:
		slog.Warn("update channel full, dropping caption block")
	}
}

func (s *Service) sendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.errors <- err:
	default:
	}
}
