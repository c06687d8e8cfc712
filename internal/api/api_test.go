package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"architect/internal/apperr"
	"architect/internal/model"
)

func TestModelCacheKeyDatabaseStrategyIncludesTenant(t *testing.T) {
	key := modelCacheKey("pkg1", "tenantA", model.StrategyDatabase)
	if key != "pkg1\x00tenantA" {
		t.Fatalf("unexpected key: %q", key)
	}
}

func TestModelCacheKeySchemaStrategyIgnoresTenant(t *testing.T) {
	if got := modelCacheKey("pkg1", "tenantA", model.StrategySchema); got != "pkg1" {
		t.Fatalf("expected bare package id, got %q", got)
	}
	if got := modelCacheKey("pkg1", "tenantB", model.StrategyRLS); got != "pkg1" {
		t.Fatalf("expected bare package id, got %q", got)
	}
}

func TestQueryParamsFlattensQueryString(t *testing.T) {
	app := fiber.New()
	var got map[string]string
	app.Get("/x", func(c *fiber.Ctx) error {
		got = queryParams(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x?status=active&limit=10", nil)
	if _, err := app.Test(req, -1); err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got["status"] != "active" || got["limit"] != "10" {
		t.Fatalf("unexpected query params: %#v", got)
	}
}

func TestErrorHandlerMapsAppError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/x", func(c *fiber.Ctx) error {
		return apperr.NotFound("widget not found")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body errorResponse
	decodeJSON(t, resp.Body, &body)
	if body.Error.Code != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND code, got %s", body.Error.Code)
	}
}

func TestErrorHandlerPassesThroughFiberErrorStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/x", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "unrelated")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Fatalf("expected fiber error status to pass through, got %d", resp.StatusCode)
	}
}

func TestCommonRoutesHealthAndVersion(t *testing.T) {
	d := &Deps{Version: "1.2.3", ArchitectSchema: "architect", DefaultPackage: "demo"}
	app := fiber.New()
	registerCommonRoutes(app, d)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var health map[string]string
	decodeJSON(t, resp.Body, &health)
	if health["status"] != "ok" {
		t.Fatalf("expected status ok, got %#v", health)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/version", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var version map[string]string
	decodeJSON(t, resp.Body, &version)
	if version["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %#v", version)
	}
}

func decodeJSON(t *testing.T, body io.Reader, out any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
