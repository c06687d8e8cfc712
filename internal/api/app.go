package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the fiber app serving every route this engine exposes:
// health/ready, config management, dynamic entity CRUD, and the KV
// side-store.
func New(d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	registerCommonRoutes(app, d)
	registerConfigRoutes(app, d)
	registerEntityRoutes(app, d)
	registerKVRoutes(app, d)

	return app
}
