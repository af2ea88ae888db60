package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint; set with -ldflags at build time.
var Version = "dev"

// Readiness is the body of GET /v1/ready.
type Readiness struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Sessions int               `json:"sessions"`
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

func pingStatus(ctx context.Context, p Pinger, absent string) (string, bool) {
	if p == nil {
		return absent, true
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error(), false
	}
	return "ok", true
}

// ReadyHandler reports on the POI store, NATS and the cache. Only the store
// gates readiness; without NATS or the cache the service still answers,
// just without live updates or cached detail lookups.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		r := Readiness{Status: "ready", Checks: make(map[string]string, 3)}

		var storeOK bool
		r.Checks["database"], storeOK = pingStatus(ctx, deps.DB, "in-memory")
		r.Checks["cache"], _ = pingStatus(ctx, deps.Cache, "not configured")

		switch {
		case deps.NATS == nil:
			r.Checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			r.Checks["nats"] = "ok"
		default:
			r.Checks["nats"] = "disconnected"
		}

		if deps.Sessions != nil {
			r.Sessions = deps.Sessions.Len()
		}

		if !storeOK {
			r.Status = "not ready"
			return c.Status(fiber.StatusServiceUnavailable).JSON(r)
		}
		return c.JSON(r)
	}
}
