// Package display delivers rendered caption blocks to an output surface.
package display

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives rendered caption blocks.
type Sink interface {
	Render(block string) error
	Close() error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(block string) error

func (f SinkFunc) Render(block string) error { return f(block) }

func (f SinkFunc) Close() error { return nil }

// WriterSink writes each block to an io.Writer followed by a separator.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	sep string
}

// NewWriterSink creates a sink writing to w. An empty separator defaults to
// a blank line between blocks.
func NewWriterSink(w io.Writer, sep string) *WriterSink {
	if sep == "" {
		sep = "\n\n"
	}
	return &WriterSink{w: w, sep: sep}
}

func (s *WriterSink) Render(block string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, block, s.sep); err != nil {
		return fmt.Errorf("write block: %w", err)
	}
	return nil
}

func (s *WriterSink) Close() error { return nil }
