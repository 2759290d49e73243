package ws

import "sync"

// Hub tracks live sessions and their meeting subscriptions. It holds
// non-owning references: opening and closing connections belongs to the
// transport layer. All methods are safe for concurrent use, and the slices
// returned for iteration are snapshots, so broadcasting never races with a
// concurrent subscribe or disconnect.
type Hub struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	subscriptions map[string]map[string]*Session // meeting id -> session id -> session
}

func NewHub() *Hub {
	return &Hub{
		sessions:      make(map[string]*Session),
		subscriptions: make(map[string]map[string]*Session),
	}
}

func (h *Hub) AddSession(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID()] = s
}

// RemoveSession drops the session and purges it from every subscription set.
func (h *Hub) RemoveSession(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID())
	for meetingID, subs := range h.subscriptions {
		delete(subs, s.ID())
		if len(subs) == 0 {
			delete(h.subscriptions, meetingID)
		}
	}
}

func (h *Hub) Subscribe(s *Session, meetingID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscriptions[meetingID]
	if !ok {
		subs = make(map[string]*Session)
		h.subscriptions[meetingID] = subs
	}
	subs[s.ID()] = s
}

func (h *Hub) Unsubscribe(s *Session, meetingID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscriptions[meetingID]; ok {
		delete(subs, s.ID())
		if len(subs) == 0 {
			delete(h.subscriptions, meetingID)
		}
	}
}

// Sessions returns a snapshot of every live session.
func (h *Hub) Sessions() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// SubscribersOf returns a snapshot of the meeting's subscribers. Always a
// slice, empty when nobody subscribed.
func (h *Hub) SubscribersOf(meetingID string) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := h.subscriptions[meetingID]
	out := make([]*Session, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
