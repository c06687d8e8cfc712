package api

import (
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"

	"architect/internal/apperr"
	"architect/internal/loader"
)

// registerConfigRoutes wires /api/v1/config/:kind and its package-scoped
// mirror /api/v1/package/:package_id/config/:kind, reusing the entity
// surface's default-package / package-scoped dual prefix: every config
// kind POST/GET is inherently scoped to one package, so the same prefix
// pair applies here.
//
// These routes are global by default: they run straight against the
// default pool, never through tenantMiddleware.
func registerConfigRoutes(app *fiber.App, d *Deps) {
	registerConfigRoutesOn(app.Group("/api/v1/config"), d, func(c *fiber.Ctx) string { return d.DefaultPackage })
	registerConfigRoutesOn(app.Group("/api/v1/package/:package_id/config"), d, func(c *fiber.Ctx) string { return c.Params("package_id") })

	app.Post("/api/v1/config/package", configPackageInstall(d))
	app.Get("/api/v1/config/package/:package_id", configPackageGet(d))
}

func registerConfigRoutesOn(g fiber.Router, d *Deps, packageID func(c *fiber.Ctx) string) {
	for _, kind := range loader.KindOrder {
		k := kind
		g.Post("/"+k, configKindUpsert(d, k, packageID))
		g.Get("/"+k, configKindList(d, k, packageID))
	}
}

// configKindUpsert handles POST /api/v1/config/:kind (and its
// package-scoped variant) — a replace-by-id upsert of the whole posted
// array.
func configKindUpsert(d *Deps, kind string, packageID func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := d.defaultStore().UpsertKind(c.Context(), packageID(c), kind, c.Body())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": nil, "meta": fiber.Map{"count": count}})
	}
}

// configKindList handles GET /api/v1/config/:kind.
func configKindList(d *Deps, kind string, packageID func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := d.defaultStore().ListKind(c.Context(), packageID(c), kind)
		if err != nil {
			return err
		}
		var rows []json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			return apperr.Internal("decode stored " + kind + ": " + err.Error())
		}
		return c.JSON(fiber.Map{"data": rows, "meta": fiber.Map{"count": len(rows)}})
	}
}

// configPackageInstall handles POST /api/v1/config/package (multipart
// zip upload): unpack → loader → validator → persist → apply DDL →
// record manifest. schemaOverride is read from an optional
// "schema_override" form field, for provisioning a schema-strategy
// tenant's package in one call.
func configPackageInstall(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return apperr.BadRequest("missing 'file' in form data")
		}
		src, err := fh.Open()
		if err != nil {
			return apperr.Internal("open uploaded file: " + err.Error())
		}
		defer src.Close()

		body, err := io.ReadAll(src)
		if err != nil {
			return apperr.Internal("read uploaded file: " + err.Error())
		}

		schemaOverride := c.FormValue("schema_override")
		record, err := d.defaultStore().InstallPackage(c.Context(), body, d.DefaultPool.AsExecutor(), schemaOverride)
		if err != nil {
			return err
		}
		d.Models.Invalidate(record.Manifest.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": record})
	}
}

// configPackageGet handles GET /api/v1/config/package/:package_id,
// returning the stored manifest plus which kinds the install carried.
func configPackageGet(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		record, err := d.defaultStore().GetPackage(c.Context(), c.Params("package_id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": record})
	}
}
