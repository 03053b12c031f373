package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/sprig/pkg/chain"
)

// StepEvent is the payload sent to stream subscribers.
type StepEvent struct {
	Kind             string  `json:"kind"`
	State            uint64  `json:"state"`
	Operator         string  `json:"operator"`
	LogHastingsRatio float64 `json:"log_hastings_ratio"`
	LogDensity       float64 `json:"log_density"`
	Infeasible       bool    `json:"infeasible,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// StreamManager fans chain events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- StepEvent]struct{} // chain ID -> channels
}

// NewStreamManager creates an empty manager.
func NewStreamManager() *StreamManager {
	return &StreamManager{subscribers: make(map[string]map[chan<- StepEvent]struct{})}
}

// Subscribe returns a channel of events for one chain and a function that
// closes it.
func (sm *StreamManager) Subscribe(chainID string) (<-chan StepEvent, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan StepEvent, 64)
	if _, ok := sm.subscribers[chainID]; !ok {
		sm.subscribers[chainID] = make(map[chan<- StepEvent]struct{})
	}
	sm.subscribers[chainID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[chainID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, chainID)
				}
			}
			close(ch)
		})
	}
}

// Broadcast sends ev to every subscriber of the chain. Slow subscribers miss
// events rather than blocking the chain.
func (sm *StreamManager) Broadcast(chainID string, ev StepEvent) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers[chainID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Hooks returns chain hooks that publish every outcome to subscribers.
func (sm *StreamManager) Hooks() chain.Hooks {
	publish := func(kind string) func(context.Context, *chain.Event) {
		return func(_ context.Context, e *chain.Event) {
			ev := StepEvent{
				Kind:             kind,
				State:            e.State,
				Operator:         e.Operator,
				LogHastingsRatio: e.LogHastingsRatio,
				LogDensity:       e.LogDensity,
				Infeasible:       e.Infeasible,
			}
			if e.Err != nil {
				ev.Error = e.Err.Error()
			}
			sm.Broadcast(e.ChainID, ev)
		}
	}
	return chain.Hooks{
		OnAccept: publish("accept"),
		OnReject: publish("reject"),
		OnFatal:  publish("fatal"),
	}
}

// SubscribeEvents handles the GET /chains/{chain}/events request (SSE). The
// optional kind query parameter is a comma separated filter, e.g.
// ?kind=accept,fatal.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var kinds map[string]bool
	if q := r.URL.Query().Get("kind"); q != "" {
		kinds = make(map[string]bool)
		for _, k := range strings.Split(q, ",") {
			kinds[strings.TrimSpace(k)] = true
		}
	}

	ch, cancel := s.Streams.Subscribe(c.ID())
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if kinds != nil && !kinds[ev.Kind] {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("event encode failed", "chain", c.ID(), "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}
