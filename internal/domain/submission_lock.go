package domain

import "context"

//go:generate mockgen -source=submission_lock.go -destination=submission_lock_mock.go -package=domain

// SubmissionLock keeps two submissions for the same scope from running at once.
type SubmissionLock interface {
	// Acquire returns an owner token, or ErrSubmissionInProgress when the key is held.
	Acquire(ctx context.Context, key string) (string, error)
	// Release frees key if token still owns it.
	Release(ctx context.Context, key, token string) error
}
