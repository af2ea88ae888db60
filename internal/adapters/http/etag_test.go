package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/mabteam/poimap/internal/adapters/http"
)

func TestETag_BodyDigest(t *testing.T) {
	app := fiber.New()
	app.Use(handler.ETagMiddleware())
	app.Get("/hello", func(c *fiber.Ctx) error { return c.SendString("hello") })
	app.Get("/live", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.SendString("hello")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/hello", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	// sha256("hello") = 2cf24dba5fb0a30e...
	if got := resp.Header.Get("ETag"); got != `W/"2cf24dba5fb0a30e"` {
		t.Errorf("unexpected ETag %q", got)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/live", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("ETag"); got != "" {
		t.Errorf("no-store response got ETag %q", got)
	}
}
