package recognizer

import (
	"context"
	"sync"
	"time"
)

// Scripted replays a fixed sequence of results at a configurable pace. It is
// used for demos and deterministic tests where no real recognizer is
// available.
type Scripted struct {
	Script   []Result
	Interval time.Duration // Delay between fragments, zero means no delay
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Start(ctx context.Context, language string) (Session, error) {
	sess := &scriptedSession{
		results: make(chan Result),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(sess.results)
		for _, res := range s.Script {
			if s.Interval > 0 {
				select {
				case <-time.After(s.Interval):
				case <-ctx.Done():
					return
				case <-sess.done:
					return
				}
			}
			if language != "" && res.Language == "" {
				res.Language = language
			}
			select {
			case sess.results <- res:
			case <-ctx.Done():
				return
			case <-sess.done:
				return
			}
		}
	}()

	return sess, nil
}

type scriptedSession struct {
	results   chan Result
	done      chan struct{}
	closeOnce sync.Once
}

func (s *scriptedSession) Feed(pcm []byte) error { return nil }

func (s *scriptedSession) Results() <-chan Result { return s.results }

func (s *scriptedSession) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
