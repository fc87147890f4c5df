// Package captions converts a live stream of speech-to-text fragments into
// stable, pre-wrapped caption blocks sized for a fixed-line heads-up display.
package captions

import (
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxCharsPerLine is the line width for word-wrapped scripts.
	DefaultMaxCharsPerLine = 44
	// WideGlyphMaxCharsPerLine is the line width in fixed-cell (CJK) mode.
	WideGlyphMaxCharsPerLine = 18
	// DefaultMaxLines is the number of lines on the display.
	DefaultMaxLines = 3
	// DefaultMaxFinalTranscripts bounds the finalized transcript history.
	DefaultMaxFinalTranscripts = 30
	// DefaultThrottleInterval is the minimum spacing between emitted
	// partial-update renders.
	DefaultThrottleInterval = 300 * time.Millisecond
)

// Config holds configuration for a Processor.
// Zero values are replaced with sensible defaults.
type Config struct {
	MaxLines            int
	MaxFinalTranscripts int
	ThrottleInterval    time.Duration
	Language            string // BCP-47 code, selects the initial layout mode

	// OnPendingUpdate is invoked when a throttled partial update becomes
	// ready to pull via PendingUpdate. May be nil.
	OnPendingUpdate func()

	// Clock overrides the timer facility. Nil means the system clock.
	Clock Clock
}

// Processor ingests partial and final transcript fragments and maintains a
// display-ready, line-wrapped, rate-limited caption block.
//
// Finalized text accumulates in a bounded FIFO history; the live partial is
// replaced wholesale on every partial fragment. Partial renders are throttled
// to one per interval with latest-wins coalescing: an update that cannot be
// emitted immediately overwrites any unsent one and is announced later
// through OnPendingUpdate. A caller that does not pull a pending update
// before the next one arrives loses the stale value. That is intended.
//
// The throttle timer fires on its own goroutine, so state is guarded by a
// mutex. Fragments must still be delivered in recognizer order.
type Processor struct {
	mu sync.Mutex

	// Layout
	maxCharsPerLine int
	maxLines        int
	wideGlyph       bool
	langCode        string

	// Transcript state
	maxFinalTranscripts int
	history             []string
	partialText         string
	lastUserTranscript  string
	displayLines        []string

	// Throttle state
	throttleInterval time.Duration
	lastEmit         time.Time
	pending          string
	hasPending       bool
	timer            Timer

	clock  Clock
	notify func()
}

// NewProcessor creates a new caption processor.
func NewProcessor(cfg Config) *Processor {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	if cfg.MaxFinalTranscripts <= 0 {
		cfg.MaxFinalTranscripts = DefaultMaxFinalTranscripts
	}
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = DefaultThrottleInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	p := &Processor{
		maxCharsPerLine:     DefaultMaxCharsPerLine,
		maxLines:            cfg.MaxLines,
		maxFinalTranscripts: cfg.MaxFinalTranscripts,
		throttleInterval:    cfg.ThrottleInterval,
		langCode:            cfg.Language,
		clock:               cfg.Clock,
		notify:              cfg.OnPendingUpdate,
	}
	if wideGlyphLanguage(cfg.Language) {
		p.wideGlyph = true
		p.maxCharsPerLine = WideGlyphMaxCharsPerLine
	}
	p.displayLines = make([]string, p.maxLines)
	return p
}

// Process ingests one transcript fragment.
//
// For partial fragments the formatted block is returned with ok=true only
// when it was emitted immediately; a throttled update is delivered later via
// OnPendingUpdate and PendingUpdate. Final fragments are never throttled and
// always return the block immediately.
func (p *Processor) Process(text string, isFinal bool) (block string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	trimmed := strings.TrimSpace(text)

	if isFinal {
		p.partialText = ""
		if trimmed != "" {
			p.history = append(p.history, trimmed)
			p.evictLocked()
		}
		p.rebuildLocked(strings.Join(p.history, " "))
		return strings.Join(p.displayLines, "\n"), true
	}

	p.partialText = trimmed
	p.lastUserTranscript = trimmed
	p.rebuildLocked(strings.Join(p.history, " ") + " " + trimmed)
	return p.throttleLocked(strings.Join(p.displayLines, "\n"))
}

// rebuildLocked recomputes the display buffer from the given combined text.
func (p *Processor) rebuildLocked(text string) {
	p.displayLines = normalizeLines(wrapText(text, p.maxCharsPerLine, p.wideGlyph), p.maxLines)
}

// throttleLocked applies the partial-update rate limit: emit immediately when
// idle for at least one interval, otherwise coalesce into the single pending
// value and arm the one-shot timer for the remainder of the interval.
func (p *Processor) throttleLocked(block string) (string, bool) {
	now := p.clock.Now()
	elapsed := now.Sub(p.lastEmit)

	if elapsed >= p.throttleInterval {
		p.lastEmit = now
		p.stopTimerLocked()
		p.pending, p.hasPending = "", false
		return block, true
	}

	p.pending, p.hasPending = block, true
	if p.timer == nil {
		p.timer = p.clock.AfterFunc(p.throttleInterval-elapsed, p.timerFired)
	}
	return "", false
}

// timerFired runs on the timer goroutine when the throttle window closes.
// The notification callback is invoked outside the lock so it may call back
// into the processor.
func (p *Processor) timerFired() {
	p.mu.Lock()
	p.lastEmit = p.clock.Now()
	p.timer = nil
	ready := p.hasPending
	notify := p.notify
	p.mu.Unlock()

	if ready && notify != nil {
		notify()
	}
}

// PendingUpdate returns and clears the stored pending block. The read is
// one-shot: a second call reports no update until a new one is coalesced.
func (p *Processor) PendingUpdate() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasPending {
		return "", false
	}
	block := p.pending
	p.pending, p.hasPending = "", false
	return block, true
}

// DisplayText returns the current renderable block: exactly MaxLines lines
// joined by newlines.
func (p *Processor) DisplayText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.displayLines, "\n")
}

// FinalTranscriptHistory returns a copy of the finalized history,
// oldest first.
func (p *Processor) FinalTranscriptHistory() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.history))
	copy(out, p.history)
	return out
}

// CombinedTranscriptHistory returns the finalized history joined by single
// spaces.
func (p *Processor) CombinedTranscriptHistory() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.history, " ")
}

// LastUserTranscript returns the most recent partial text seen. Unlike the
// live partial, it survives finalization and is only overwritten by the next
// partial fragment.
func (p *Processor) LastUserTranscript() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUserTranscript
}

// MaxFinalTranscripts returns the current history bound.
func (p *Processor) MaxFinalTranscripts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxFinalTranscripts
}

// SetMaxFinalTranscripts adjusts the history bound. Shrinking evicts the
// oldest entries immediately. Values below one are ignored.
func (p *Processor) SetMaxFinalTranscripts(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 {
		return
	}
	p.maxFinalTranscripts = n
	p.evictLocked()
}

// MaxCharsPerLine returns the line width of the current layout mode.
func (p *Processor) MaxCharsPerLine() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxCharsPerLine
}

// Language returns the language code of the current session.
func (p *Processor) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.langCode
}

// ChangeLanguage switches to the layout mode implied by the BCP-47 code.
// A switch between word-wrapped and wide-glyph layout is a hard reset:
// history, partial text, display buffer, and throttle state all start over.
// When the mode does not change, only the recorded code is updated.
func (p *Processor) ChangeLanguage(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.langCode = code
	wide := wideGlyphLanguage(code)
	if wide == p.wideGlyph {
		return
	}

	p.wideGlyph = wide
	if wide {
		p.maxCharsPerLine = WideGlyphMaxCharsPerLine
	} else {
		p.maxCharsPerLine = DefaultMaxCharsPerLine
	}
	p.resetLocked()
	p.lastUserTranscript = ""
}

// Clear resets transcript and throttle state while preserving configuration
// and the current language mode.
func (p *Processor) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Processor) resetLocked() {
	p.history = nil
	p.partialText = ""
	p.displayLines = make([]string, p.maxLines)
	p.lastEmit = time.Time{}
	p.stopTimerLocked()
	p.pending, p.hasPending = "", false
}

func (p *Processor) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Processor) evictLocked() {
	if drop := len(p.history) - p.maxFinalTranscripts; drop > 0 {
		p.history = append([]string(nil), p.history[drop:]...)
	}
}
