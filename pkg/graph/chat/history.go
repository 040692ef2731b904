package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one conversation entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DefaultRetainedExchanges is the number of user/assistant pairs kept per
// session when the caller does not configure one.
const DefaultRetainedExchanges = 5

// SessionStore holds bounded conversation state keyed by session id.
// Each session retains at most 2×N entries (N exchanges); the oldest
// pair is evicted first. All methods are safe for concurrent use, and a
// pair of turns is appended atomically so a caller timeout never leaves
// a half-recorded exchange.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string][]Turn
	retained int
}

// NewSessionStore creates a store retaining n exchanges per session.
func NewSessionStore(n int) *SessionStore {
	if n <= 0 {
		n = DefaultRetainedExchanges
	}
	return &SessionStore{
		sessions: make(map[string][]Turn),
		retained: n,
	}
}

// EnsureSession returns the given id, or a generated one when empty.
func (s *SessionStore) EnsureSession(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// History returns a copy of the session's turns, oldest first.
func (s *SessionStore) History(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// AppendExchange records one completed user/assistant exchange and trims
// the session to its cap.
func (s *SessionStore) AppendExchange(sessionID, userContent, assistantContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID],
		Turn{Role: RoleUser, Content: userContent},
		Turn{Role: RoleAssistant, Content: assistantContent},
	)
	if limit := 2 * s.retained; len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	s.sessions[sessionID] = turns
}

// Reset clears a session unconditionally.
func (s *SessionStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
