package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheRule applies a Cache-Control value to paths matching exactly or,
// when prefix is set, by prefix. The first matching rule wins.
type cacheRule struct {
	path   string
	prefix bool
	value  string
}

var cacheRules = []cacheRule{
	{path: "/v1/health", value: "public, max-age=10"},
	{path: "/v1/ready", value: "public, max-age=10"},
	{path: "/metrics", value: "no-cache"},
	{path: "/graphql", value: "private, max-age=0"},
	// clusters depend on a POI set that can change at any moment
	{path: "/v1/clusters", value: "no-cache"},
	{path: "/v1/pois/export", value: "public, max-age=60"},
	{path: "/v1/pois/", prefix: true, value: "public, max-age=30"},
	{path: "/v1/", prefix: true, value: "public, max-age=10"},
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if path == r.path || (r.prefix && strings.HasPrefix(path, r.path)) {
			return r.value
		}
	}
	return ""
}

// CachingMiddleware sets a default Cache-Control on GET responses unless the
// handler already chose one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		if v := cacheControlFor(c.Path()); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}
