package config

import "errors"

var (
	ErrRedisAddrMissing     = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB       = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidBlanketUpdate = errors.New("ALLOW_BLANKET_UPDATE must be a boolean")
	ErrInvalidLockBackend   = errors.New("SUBMISSION_LOCK_BACKEND must be redis or memory")
	ErrInvalidLockTTL       = errors.New("SUBMISSION_LOCK_TTL must be a positive duration")
)
