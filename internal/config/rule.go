package config

import (
	"os"
	"strconv"
	"time"
)

const (
	deadlineLenientUnitsEnv  = "DEADLINE_LENIENT_UNITS"
	allowBlanketUpdateEnv    = "ALLOW_BLANKET_UPDATE"
	submissionLockBackendEnv = "SUBMISSION_LOCK_BACKEND"
	submissionLockTTLEnv     = "SUBMISSION_LOCK_TTL"

	defaultSubmissionLockTTL = 30 * time.Second
)

type LockBackend string

const (
	LockBackendRedis  LockBackend = "redis"
	LockBackendMemory LockBackend = "memory"
)

type RuleConfig struct {
	// LenientUnits treats an unknown follow-up unit as a zero duration instead of rejecting it.
	LenientUnits bool
	// AllowBlanketUpdate lets a request without customerIds update every customer.
	AllowBlanketUpdate bool
	LockBackend        LockBackend
	LockTTL            time.Duration
}

func LoadRuleConfig() (*RuleConfig, error) {
	allowBlanket := true
	if v := os.Getenv(allowBlanketUpdateEnv); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, ErrInvalidBlanketUpdate
		}
		allowBlanket = parsed
	}

	// Redis is opt-in so that a deployment with only DATABASE_URL starts.
	backend := LockBackend(os.Getenv(submissionLockBackendEnv))
	if backend == "" {
		backend = LockBackendMemory
	}

	ttl := defaultSubmissionLockTTL
	if v := os.Getenv(submissionLockTTLEnv); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return nil, ErrInvalidLockTTL
		}
		ttl = parsed
	}

	return &RuleConfig{
		LenientUnits:       os.Getenv(deadlineLenientUnitsEnv) == "true",
		AllowBlanketUpdate: allowBlanket,
		LockBackend:        backend,
		LockTTL:            ttl,
	}, nil
}

func (c *RuleConfig) Validate() error {
	switch c.LockBackend {
	case LockBackendRedis, LockBackendMemory:
		return nil
	default:
		return ErrInvalidLockBackend
	}
}
