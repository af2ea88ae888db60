package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/mabteam/poimap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

type route struct {
	method  string
	path    string
	handler fiber.Handler
}

// v1Routes lists the versioned REST API. Static segments precede :id so
// /pois/export and /pois/category are not captured as ids.
func v1Routes(deps *Dependencies) []route {
	return []route{
		{fiber.MethodGet, "/clusters", ClustersHandler(deps)},
		{fiber.MethodGet, "/pois", ListPOIsHandler(deps)},
		{fiber.MethodGet, "/pois/export", ExportHandler(deps)},
		{fiber.MethodGet, "/pois/category/:category", CategoryPOIsHandler(deps)},
		{fiber.MethodGet, "/pois/:id", GetPOIHandler(deps)},
		{fiber.MethodPost, "/pois", CreatePOIHandler(deps)},
		{fiber.MethodPost, "/pois/batch", BatchCreateHandler(deps)},
		{fiber.MethodDelete, "/pois", DeleteAllHandler(deps)},
		{fiber.MethodDelete, "/pois/:id", DeletePOIHandler(deps)},
	}
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 600 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	for _, r := range v1Routes(deps) {
		v1.Add(r.method, r.path, timeout.NewWithContext(r.handler, requestTimeout))
	}

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
