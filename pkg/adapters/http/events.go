package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/htn/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // agent ID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a listener for agentID. Call the returned function to leave.
func (sm *StreamManager) Subscribe(agentID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[agentID]; !ok {
		sm.subscribers[agentID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[agentID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[agentID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, agentID)
			}
		}
	}
}

// Subscribers counts the listeners of agentID.
func (sm *StreamManager) Subscribers(agentID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[agentID])
}

// Broadcast sends msg to every listener of agentID. Slow listeners miss messages.
func (sm *StreamManager) Broadcast(agentID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[agentID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// Without agent_id it streams task tree reloads; with it, state diffs of that
// agent, optionally filtered to the comma separated keys in watch.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, http.StatusInternalServerError, "streaming not supported", nil)
		return
	}

	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		reloads, err := s.Engine.Watch(r.Context())
		if err != nil {
			s.fail(w, http.StatusNotImplemented, "watch unavailable", err)
			return
		}
		sseHeaders(w)
		fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case err, ok := <-reloads:
				if !ok {
					return
				}
				if err != nil {
					fmt.Fprintf(w, "event: error\ndata: %s\n\n", strings.ReplaceAll(err.Error(), "\n", " "))
				} else {
					fmt.Fprintf(w, "event: reload\ndata: ok\n\n")
				}
				flusher.Flush()
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(agentID)
	defer cancel()

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		for _, k := range strings.Split(q, ",") {
			watch = append(watch, strings.TrimSpace(k))
		}
	}

	sseHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE client subscribed", "agent_id", agentID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "agent_id", agentID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !touches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// touches reports whether the encoded diff changes or removes any of keys.
func touches(msg string, keys []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, k := range keys {
		if _, ok := diff.Changed[k]; ok {
			return true
		}
		if slices.Contains(diff.Removed, k) {
			return true
		}
	}
	return false
}
