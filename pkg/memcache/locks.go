// pkg/memcache/locks.go
package mem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// Locks is an in-process TTL lock table. It only serialises work inside a
// single instance; multi-instance deployments use the Redis locker.
type Locks struct {
	mu   sync.Mutex
	data map[string]entry
}

func NewLocks() *Locks {
	return &Locks{
		data: make(map[string]entry),
	}
}

// Acquire takes key for ttl. It returns ok=false if another holder has it.
func (s *Locks) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.data[key]; ok && now.Before(e.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	s.data[key] = entry{
		token:     token,
		expiresAt: now.Add(ttl),
	}
	return token, true, nil
}

// Release drops key only if token still owns it.
func (s *Locks) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.data[key]; ok && e.token == token {
		delete(s.data, key)
	}
	return nil
}

// Held reports whether key is currently locked.
func (s *Locks) Held(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.data, key) // cleanup expired
		return false
	}
	return true
}
