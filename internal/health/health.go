package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type CheckResult struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status  Status                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

// Checker reports readiness from the configured dependencies. A dependency that is
// not configured is not checked.
type Checker struct {
	checks  map[string]PingFunc
	version string
}

func NewChecker(version string) *Checker {
	return &Checker{
		checks:  make(map[string]PingFunc),
		version: version,
	}
}

func (c *Checker) Register(name string, ping PingFunc) *Checker {
	c.checks[name] = ping
	return c
}

func (c *Checker) WithDatabase(db *gorm.DB) *Checker {
	if db == nil {
		return c
	}
	return c.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

func (c *Checker) WithRedis(client *redis.Client) *Checker {
	if client == nil {
		return c
	}
	return c.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func (c *Checker) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:  StatusHealthy,
		Version: c.version,
		Checks:  make(map[string]CheckResult, len(c.checks)),
	}

	for name, ping := range c.checks {
		start := time.Now()
		if err := ping(checkCtx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = CheckResult{
				Status: StatusUnhealthy,
				Error:  err.Error(),
			}
			continue
		}
		status.Checks[name] = CheckResult{
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}

	return status
}

func (c *Checker) LiveHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (c *Checker) ReadyHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := c.Check(ctx.Request.Context())

		httpStatus := http.StatusOK
		if status.Status != StatusHealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		ctx.JSON(httpStatus, status)
	}
}
