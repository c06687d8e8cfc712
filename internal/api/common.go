package api

import (
	"github.com/gofiber/fiber/v2"

	"architect/internal/pgexec"
)

// registerCommonRoutes wires the unprefixed health/ready/version/info
// endpoints.
func registerCommonRoutes(app *fiber.App, d *Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		if _, err := pgexec.QueryRow(c.Context(), d.DefaultPool.AsExecutor(), "SELECT 1"); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": d.Version})
	})

	app.Get("/info", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version":          d.Version,
			"architect_schema": d.ArchitectSchema,
			"default_package":  d.DefaultPackage,
		})
	})
}
