package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Response represents the full health check response
type Response struct {
	Status     Status                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Checker performs health checks on the store and the optional cache.
type Checker struct {
	db           *sql.DB
	redis        *redis.Client
	checkTimeout time.Duration
}

// NewChecker creates a health checker. redis may be nil when caching is
// disabled.
func NewChecker(db *sql.DB, redisClient *redis.Client) *Checker {
	return &Checker{
		db:           db,
		redis:        redisClient,
		checkTimeout: 5 * time.Second,
	}
}

// Handler serves GET /health. The database being down makes the service
// unhealthy (503); a down cache only degrades it.
func (c *Checker) Handler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.checkTimeout)
	defer cancel()

	components := map[string]ComponentHealth{
		"database": c.checkDatabase(ctx),
	}
	if c.redis != nil {
		components["cache"] = c.checkRedis(ctx)
	}

	overall := StatusHealthy
	httpStatus := http.StatusOK
	if components["database"].Status == StatusUnhealthy {
		overall = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	} else if cacheHealth, ok := components["cache"]; ok && cacheHealth.Status == StatusUnhealthy {
		overall = StatusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(Response{
		Status:     overall,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

func (c *Checker) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := c.db.PingContext(ctx); err != nil {
		return ComponentHealth{
			Status:   StatusUnhealthy,
			Message:  err.Error(),
			Duration: time.Since(start).String(),
		}
	}
	return ComponentHealth{
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
}

func (c *Checker) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{
			Status:   StatusUnhealthy,
			Message:  err.Error(),
			Duration: time.Since(start).String(),
		}
	}
	return ComponentHealth{
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
}
