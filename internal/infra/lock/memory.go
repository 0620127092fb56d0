package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// memoryLock guards submissions within a single process.
type memoryLock struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryLock(ttl time.Duration) domain.SubmissionLock {
	return newMemoryLock(ttl, time.Now)
}

func newMemoryLock(ttl time.Duration, now func() time.Time) *memoryLock {
	return &memoryLock{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (l *memoryLock) Acquire(_ context.Context, key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expiresAt) {
		return "", domain.ErrSubmissionInProgress
	}

	token := uuid.NewString()
	l.entries[key] = memoryEntry{
		token:     token,
		expiresAt: now.Add(l.ttl),
	}
	return token, nil
}

func (l *memoryLock) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || e.token != token {
		return domain.ErrLockNotHeld
	}

	delete(l.entries, key)
	return nil
}
