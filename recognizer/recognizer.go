// Package recognizer defines the speech-to-text source abstraction and its
// implementations.
package recognizer

import "context"

// Result is a single transcript fragment from a recognizer.
type Result struct {
	Text       string  `json:"text"`
	IsFinal    bool    `json:"isFinal"`
	Language   string  `json:"language,omitempty"`   // BCP-47 or ISO 639-1 hint
	Confidence float64 `json:"confidence,omitempty"` // 0-1, zero when unknown
}

// Session is a live recognition stream. Results are delivered in recognition
// order; the channel is closed when the stream ends or the session is closed.
type Session interface {
	// Feed submits raw audio to the recognizer. Sources that do not accept
	// streamed audio ignore the data.
	Feed(pcm []byte) error

	Results() <-chan Result

	Close() error
}

// Source creates recognition sessions.
type Source interface {
	Name() string

	// Start opens a session transcribing in the given language. An empty
	// language lets the source decide.
	Start(ctx context.Context, language string) (Session, error)
}

// Registry holds available recognizer sources by name.
type Registry struct {
	sources []Source
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a source. Later registrations win on name collision.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Get returns the source with the given name, or nil.
func (r *Registry) Get(name string) Source {
	for i := len(r.sources) - 1; i >= 0; i-- {
		if r.sources[i].Name() == name {
			return r.sources[i]
		}
	}
	return nil
}

// List returns all registered sources in registration order.
func (r *Registry) List() []Source {
	return r.sources
}
