package bot

import (
	"sync"
	"time"

	"marketplace-review-server/models"
)

// State is the wizard's position inside one review conversation.
type State string

const (
	StateAwaitingRating    State = "AWAITING_RATING"
	StateAwaitingText      State = "AWAITING_TEXT"
	StateSubmitReady       State = "SUBMIT_READY"
	StateAwaitingAnonymity State = "AWAITING_ANONYMITY"
	StateSubmitted         State = "SUBMITTED"
)

// ReviewSession holds one participant's in-progress review. It lives only
// in memory; nothing is persisted until the wizard finalizes.
type ReviewSession struct {
	Direction models.ReviewDirection
	OrderID   uint
	State     State
	Ratings   map[string]int
	TextDraft *string

	// Panel coordinates: the single message the whole wizard edits in place.
	PanelChatID    int64
	PanelMessageID int

	LastActivity time.Time
}

// NextDimension returns the first unset dimension in the fixed walk order.
func (s *ReviewSession) NextDimension() (string, bool) {
	for _, dim := range s.Direction.Dimensions() {
		if _, ok := s.Ratings[dim]; !ok {
			return dim, true
		}
	}
	return "", false
}

// Complete reports whether every dimension has a rating.
func (s *ReviewSession) Complete() bool {
	_, missing := s.NextDimension()
	return !missing
}

type sessionKey struct {
	ChatID    int64
	Direction models.ReviewDirection
}

// SessionManager owns all live wizard sessions, keyed by (chat, direction)
// so the two directions of one order never share state. All access goes
// through the manager; there is no process-wide session map.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*ReviewSession
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[sessionKey]*ReviewSession)}
}

// Start creates (or replaces) the session for this chat and direction.
func (m *SessionManager) Start(chatID int64, direction models.ReviewDirection, orderID uint, panelChatID int64, panelMessageID int) *ReviewSession {
	session := &ReviewSession{
		Direction:      direction,
		OrderID:        orderID,
		State:          StateAwaitingRating,
		Ratings:        make(map[string]int),
		PanelChatID:    panelChatID,
		PanelMessageID: panelMessageID,
		LastActivity:   time.Now(),
	}
	m.mu.Lock()
	m.sessions[sessionKey{ChatID: chatID, Direction: direction}] = session
	m.mu.Unlock()
	return session
}

// Get returns the live session for the chat and direction, if any.
func (m *SessionManager) Get(chatID int64, direction models.ReviewDirection) (*ReviewSession, bool) {
	m.mu.RLock()
	session, ok := m.sessions[sessionKey{ChatID: chatID, Direction: direction}]
	m.mu.RUnlock()
	return session, ok
}

// AwaitingText returns the session in this chat currently expecting a
// free-text message, if any. At most one session per chat can be in that
// state at a time because the panel-edit model serializes interaction.
func (m *SessionManager) AwaitingText(chatID int64) (*ReviewSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, session := range m.sessions {
		if key.ChatID == chatID && session.State == StateAwaitingText {
			return session, true
		}
	}
	return nil, false
}

// Delete removes the session for the chat and direction.
func (m *SessionManager) Delete(chatID int64, direction models.ReviewDirection) {
	m.mu.Lock()
	delete(m.sessions, sessionKey{ChatID: chatID, Direction: direction})
	m.mu.Unlock()
}

// Touch refreshes the session's activity timestamp.
func (m *SessionManager) Touch(session *ReviewSession) {
	m.mu.Lock()
	session.LastActivity = time.Now()
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneIdle drops sessions idle for longer than ttl and reports how many
// were removed. Already persisted reviews are unaffected.
func (m *SessionManager) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for key, session := range m.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(m.sessions, key)
			pruned++
		}
	}
	return pruned
}
