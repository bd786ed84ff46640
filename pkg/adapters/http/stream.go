package http

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // RecordID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a listener for a record. The returned func unsubscribes.
func (sm *StreamManager) Subscribe(recordID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[recordID]; !ok {
		sm.subscribers[recordID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[recordID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[recordID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, recordID)
			}
		}
	}
}

// Broadcast sends msg to every listener of a record, dropping it for slow clients.
func (sm *StreamManager) Broadcast(recordID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[recordID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers returns the number of listeners of a record.
func (sm *StreamManager) Subscribers(recordID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[recordID])
}

// SubscribeEvents handles GET /machines/{machine}/records/{id}/events (SSE).
// Every committed transition on the record is pushed as its history record.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if err := s.checkMachine(r); err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	recordID := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(recordID)
	defer cancel()

	s.logger.Debug("SSE: subscribed", "record_id", recordID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "record_id", recordID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: transition\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
