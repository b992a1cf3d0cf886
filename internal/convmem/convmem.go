// Package convmem holds per-user conversation history for the
// question-answering flow, bounded by a retention window.
package convmem

import (
	"log/slog"
	"sync"
	"time"

	"pulsebot/internal/domain"
)

// DefaultRetention is the age after which turns are pruned.
const DefaultRetention = 168 * time.Hour

// Store keeps each user's recent turns. Turns older than the retention
// window are dropped on every read and write, so histories self-heal even
// without new activity.
type Store struct {
	mu        sync.Mutex
	byUser    map[string][]domain.ConversationTurn
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

type StoreConfig struct {
	Retention time.Duration
	Now       func() time.Time // test hook, defaults to time.Now
	Logger    *slog.Logger
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		byUser:    make(map[string][]domain.ConversationTurn),
		retention: cfg.Retention,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
}

// Append adds a turn to the user's history, pruning expired turns first.
func (s *Store) Append(userID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.prune(s.byUser[userID])
	turns = append(turns, domain.ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	s.byUser[userID] = turns
}

// History returns the user's turns in order, oldest first.
func (s *Store) History(userID string) []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.prune(s.byUser[userID])
	if turns == nil {
		delete(s.byUser, userID)
		return nil
	}
	s.byUser[userID] = turns
	out := make([]domain.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Clear deletes the user's entire history immediately.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}

// prune drops turns older than the retention window. A turn at exactly the
// window boundary is expired.
func (s *Store) prune(turns []domain.ConversationTurn) []domain.ConversationTurn {
	if len(turns) == 0 {
		return nil
	}
	cutoff := s.now().Add(-s.retention)
	kept := make([]domain.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		if t.Timestamp.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// Export copies all histories for persistence.
func (s *Store) Export() map[string][]domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]domain.ConversationTurn, len(s.byUser))
	for user, turns := range s.byUser {
		turns = s.prune(turns)
		if turns == nil {
			continue
		}
		cp := make([]domain.ConversationTurn, len(turns))
		copy(cp, turns)
		out[user] = cp
	}
	return out
}

// Import replaces all histories with a loaded snapshot.
func (s *Store) Import(histories map[string][]domain.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUser = make(map[string][]domain.ConversationTurn, len(histories))
	for user, turns := range histories {
		if len(turns) == 0 {
			continue
		}
		cp := make([]domain.ConversationTurn, len(turns))
		copy(cp, turns)
		s.byUser[user] = cp
	}
}
