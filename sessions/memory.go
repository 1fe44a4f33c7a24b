package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"minigram/types"

	"github.com/google/uuid"
)

type memSession struct {
	profileID uint
	expires   time.Time
}

// MemoryStore keeps sessions in process memory. Used for local development
// without Redis and in tests.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]memSession
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		TTL:      ttl,
		Now:      time.Now,
		sessions: map[string]memSession{},
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Issue(ctx context.Context, profileID uint) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := memSession{profileID: profileID}
	if s.TTL > 0 {
		sess.expires = s.Now().Add(s.TTL)
	}
	s.sessions[token] = sess

	return token, nil
}

func (s *MemoryStore) Resolve(ctx context.Context, token string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, fmt.Errorf("%w: session", types.ErrNotFound)
	}

	if !sess.expires.IsZero() && !s.Now().Before(sess.expires) {
		delete(s.sessions, token)
		return 0, fmt.Errorf("%w: session expired", types.ErrNotFound)
	}

	return sess.profileID, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}
