package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"architect/internal/apperr"
	"architect/internal/sysstore"
)

// registerKVRoutes wires the package-scoped KV side-store.
// It honors X-Tenant-ID exactly like the entity routes: every handler
// here reads and writes through the request's tenant.RequestContext
// executor, not the default pool.
func registerKVRoutes(app *fiber.App, d *Deps) {
	g := app.Group("/api/v1/package/:package_id/kv", tenantMiddleware(d))
	g.Get("/:namespace", kvList(d))
	g.Get("/:namespace/:key", kvGet(d))
	g.Put("/:namespace/:key", kvPut(d))
	g.Delete("/:namespace/:key", kvDelete(d))
}

func kvStoreFor(c *fiber.Ctx, d *Deps) *sysstore.Store {
	rc := requestContext(c)
	return &sysstore.Store{Exec: rc.Exec, Schema: d.ArchitectSchema}
}

func kvList(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := kvStoreFor(c, d).KVList(c.Context(), c.Params("package_id"), c.Params("namespace"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": entries})
	}
}

func kvGet(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, err := kvStoreFor(c, d).KVGet(c.Context(), c.Params("package_id"), c.Params("namespace"), c.Params("key"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{"key": c.Params("key"), "value": value}})
	}
}

func kvPut(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var value any
		if err := json.Unmarshal(c.Body(), &value); err != nil {
			return apperr.BadRequest("invalid JSON body: expected the raw value to store")
		}
		store := kvStoreFor(c, d)
		packageID, namespace, key := c.Params("package_id"), c.Params("namespace"), c.Params("key")
		if err := store.KVPut(c.Context(), packageID, namespace, key, value); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{"key": key, "value": value}})
	}
}

func kvDelete(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store := kvStoreFor(c, d)
		if err := store.KVDelete(c.Context(), c.Params("package_id"), c.Params("namespace"), c.Params("key")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
