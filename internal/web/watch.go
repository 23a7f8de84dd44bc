// pattern: Imperative Shell

package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
)

// HandleWatch upgrades to websocket and streams structured workspace change
// events as JSON messages, one per change.
func (s *Server) HandleWatch(w http.ResponseWriter, r *http.Request) {
	// Restrict to localhost origins to prevent cross-origin attacks.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	// No inbound messages are expected; CloseRead gives us a context that
	// ends when the client disconnects. Do NOT use r.Context() after the
	// upgrade.
	ctx := conn.CloseRead(context.Background())

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
