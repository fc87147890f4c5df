package display

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketSink pushes each rendered block as a text message to a websocket
// endpoint, typically an overlay renderer.
type WebSocketSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWebSocket connects to the given ws:// or wss:// URL.
func DialWebSocket(ctx context.Context, rawURL string, header http.Header) (*WebSocketSink, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", rawURL, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	return &WebSocketSink{conn: conn}, nil
}

func (s *WebSocketSink) Render(block string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(block)); err != nil {
		return fmt.Errorf("write block: %w", err)
	}
	return nil
}

func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
	return s.conn.Close()
}
