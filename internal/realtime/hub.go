package realtime

import (
	"sync"
	"time"
)

type Event struct {
	Room    string         `json:"-"`
	Name    string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
	TS      string         `json:"ts"`
}

// Hub fans events out to per-room subscribers. Emit never blocks: a slow or
// absent listener just misses the event, matching the best-effort contract of
// the realtime channel.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan Event]struct{})}
}

func (h *Hub) Subscribe(room string) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[chan Event]struct{})
	}
	h.rooms[room][ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(room string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[room]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.rooms, room)
		}
	}
	close(ch)
}

func (h *Hub) Emit(room, event string, payload map[string]any) {
	e := Event{Room: room, Name: event, Payload: payload, TS: time.Now().UTC().Format(time.RFC3339)}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.rooms[room] {
		select {
		case ch <- e:
		default: // subscriber is behind; drop rather than block the emitter
		}
	}
}
