package captions

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.hudcap.dev/hudcap/display"
	"go.hudcap.dev/hudcap/internal/types"
	"go.hudcap.dev/hudcap/recognizer"
)

type collectingSink struct {
	mu     sync.Mutex
	blocks []string
}

func (c *collectingSink) Render(block string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = append(c.blocks, block)
	return nil
}

func (c *collectingSink) Close() error { return nil }

func (c *collectingSink) rendered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.blocks...)
}

func TestServiceEndToEnd(t *testing.T) {
	source := &recognizer.Scripted{
		Script: []recognizer.Result{
			{Text: "good", IsFinal: false},
			{Text: "good morning", IsFinal: false},
			{Text: "good morning everyone", IsFinal: true},
		},
		// Pace fragments wider than the throttle so every partial emits
		// on the leading edge and delivery order is deterministic.
		Interval: 2 * time.Millisecond,
	}
	sink := &collectingSink{}

	svc, err := NewService(ServiceConfig{
		Source:    source,
		Sink:      sink,
		Processor: Config{ThrottleInterval: time.Nanosecond},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Start(context.Background(), "en-US"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var updates []types.CaptionUpdate
	for u := range svc.Updates() {
		updates = append(updates, u)
	}

	if len(updates) == 0 {
		t.Fatal("no caption updates delivered")
	}

	last := updates[len(updates)-1]
	if !last.IsFinal {
		t.Errorf("last update IsFinal = false, want true")
	}
	if len(last.Lines) != DefaultMaxLines {
		t.Errorf("last update has %d lines, want %d", len(last.Lines), DefaultMaxLines)
	}
	if last.Lines[0] != "good morning everyone" {
		t.Errorf("last update line 0 = %q, want %q", last.Lines[0], "good morning everyone")
	}
	if last.SessionID == "" {
		t.Error("update missing session id")
	}
	if last.Language != "en-US" {
		t.Errorf("update language = %q, want %q", last.Language, "en-US")
	}

	rendered := sink.rendered()
	if len(rendered) != len(updates) {
		t.Errorf("sink rendered %d blocks, updates carried %d", len(rendered), len(updates))
	}
	if got := rendered[len(rendered)-1]; !strings.HasPrefix(got, "good morning everyone") {
		t.Errorf("final rendered block = %q, want prefix %q", got, "good morning everyone")
	}
}

func TestServiceStatus(t *testing.T) {
	source := &recognizer.Scripted{
		Script: []recognizer.Result{
			{Text: "one", IsFinal: true},
			{Text: "two", IsFinal: true},
		},
	}
	svc, err := NewService(ServiceConfig{
		Source: source,
		Sink:   display.SinkFunc(func(string) error { return nil }),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if status := svc.Status(); status.Active {
		t.Error("Status.Active = true before Start")
	}

	if err := svc.Start(context.Background(), "en"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range svc.Updates() {
	}

	status := svc.Status()
	if status.Active {
		t.Error("Status.Active = true after stream drained")
	}
	if status.FinalCount != 2 {
		t.Errorf("Status.FinalCount = %d, want 2", status.FinalCount)
	}
	if status.Source != "scripted" {
		t.Errorf("Status.Source = %q, want %q", status.Source, "scripted")
	}
}

func TestServiceRejectsDoubleStart(t *testing.T) {
	source := &recognizer.Scripted{
		Script:   []recognizer.Result{{Text: "hello", IsFinal: true}},
		Interval: 10 * time.Millisecond,
	}
	svc, err := NewService(ServiceConfig{
		Source: source,
		Sink:   display.SinkFunc(func(string) error { return nil }),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Start(context.Background(), "en"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Start(context.Background(), "en"); err == nil {
		t.Error("second Start should fail while running")
	}
	for range svc.Updates() {
	}
}

func TestServiceStopThenStart(t *testing.T) {
	source := &recognizer.Scripted{
		Script: []recognizer.Result{
			{Text: "hello", IsFinal: true},
			{Text: "again", IsFinal: true},
		},
		Interval: 10 * time.Millisecond,
	}
	svc, err := NewService(ServiceConfig{
		Source: source,
		Sink:   display.SinkFunc(func(string) error { return nil }),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Start(context.Background(), "en"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// A restart between Stop and the stream draining must be rejected, not
	// spawn a second run goroutine that would close the channels again.
	if err := svc.Start(context.Background(), "en"); err == nil {
		t.Error("Start after Stop should fail")
	}

	for range svc.Updates() {
	}

	if status := svc.Status(); status.Active {
		t.Error("Status.Active = true after Stop")
	}
}

func TestServiceRequiresSourceAndSink(t *testing.T) {
	if _, err := NewService(ServiceConfig{Sink: display.SinkFunc(func(string) error { return nil })}); err == nil {
		t.Error("NewService without source should fail")
	}
	if _, err := NewService(ServiceConfig{Source: &recognizer.Scripted{}}); err == nil {
		t.Error("NewService without sink should fail")
	}
}
