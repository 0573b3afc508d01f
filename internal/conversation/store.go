package conversation

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks research-chatbot/internal/conversation Store

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"

	"research-chatbot/internal/rag"
)

// Store keeps the turns of every conversation session.
// Sessions are created on first reference; Reset clears the turns but keeps the session.
type Store interface {
	// Add appends a turn to the session.
	Add(ctx context.Context, sessionID string, turn rag.Turn) error
	// Get returns all turns of the session, oldest first.
	Get(ctx context.Context, sessionID string) ([]rag.Turn, error)
	// Recent returns at most the last n turns of the session, oldest first.
	Recent(ctx context.Context, sessionID string, n int) ([]rag.Turn, error)
	// Reset removes all turns of the session.
	Reset(ctx context.Context, sessionID string) error
}

// session holds one conversation. The mutex serializes writers of the same session key.
type session struct {
	mu    sync.Mutex
	turns []rag.Turn
}

// MemoryStore is an in-process Store backed by go-cache. Sessions never expire.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// session returns the session for id, creating it if needed.
func (s *MemoryStore) session(id string) *session {
	if x, found := s.cache.Get(id); found {
		return x.(*session)
	}
	// Add fails when another caller created the session first; use theirs.
	created := &session{}
	if err := s.cache.Add(id, created, cache.NoExpiration); err != nil {
		x, _ := s.cache.Get(id)
		return x.(*session)
	}
	return created
}

// Add appends a turn to the session.
func (s *MemoryStore) Add(_ context.Context, sessionID string, turn rag.Turn) error {
	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turn)
	return nil
}

// Get returns a copy of all turns of the session.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) ([]rag.Turn, error) {
	return s.Recent(ctx, sessionID, 0)
}

// Recent returns a copy of the last n turns of the session. n <= 0 returns every turn.
func (s *MemoryStore) Recent(_ context.Context, sessionID string, n int) ([]rag.Turn, error) {
	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	turns := sess.turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]rag.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Reset removes all turns of the session.
func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = nil
	return nil
}
