// pattern: Imperative Shell

package web

import (
	"fmt"
	"net/http"
	"sync"

	"agentdesk/internal/watcher"
)

// eventBroker fans out workspace change events to subscribers.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan watcher.Event]struct{}
}

func newEventBroker() *eventBroker {
	return &eventBroker{
		subscribers: make(map[chan watcher.Event]struct{}),
	}
}

// Subscribe returns a buffered channel receiving change events.
// The caller must call Unsubscribe when done.
func (b *eventBroker) Subscribe() chan watcher.Event {
	ch := make(chan watcher.Event, 16)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it. Closing under the
// mutex is safe because Notify sends under the same mutex. Safe to call more
// than once for the same channel.
func (b *eventBroker) Unsubscribe(ch chan watcher.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// Notify sends an event to all subscribers. Non-blocking: a subscriber with
// a full buffer misses the event but will still see later ones.
func (b *eventBroker) Notify(ev watcher.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// handleEvents is the SSE endpoint. It sends a "connected" event on open,
// then a "refresh" event for each workspace change, so clients know to
// re-fetch listings and git state.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", ev.Path)
			flusher.Flush()
		}
	}
}
