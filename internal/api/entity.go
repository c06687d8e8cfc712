package api

import (
	"github.com/gofiber/fiber/v2"

	"architect/internal/apperr"
	"architect/internal/crud"
	"architect/internal/model"
	"architect/internal/resolve"
)

// entityHandler serves every dynamic entity route for one package
// binding: either the default (unprefixed) package or a specific
// :package_id. packageIDFromParams extracts which package a given
// request targets.
type entityHandler struct {
	deps                *Deps
	packageIDFromParams func(c *fiber.Ctx) (string, error)
}

func registerEntityRoutes(app *fiber.App, d *Deps) {
	h := &entityHandler{deps: d, packageIDFromParams: func(c *fiber.Ctx) (string, error) {
		if d.DefaultPackage == "" {
			return "", apperr.NotFound("no default package configured")
		}
		return d.DefaultPackage, nil
	}}
	registerEntityRoutesOn(app.Group("/api/v1", tenantMiddleware(d)), h)

	ph := &entityHandler{deps: d, packageIDFromParams: func(c *fiber.Ctx) (string, error) {
		return c.Params("package_id"), nil
	}}
	registerEntityRoutesOn(app.Group("/api/v1/package/:package_id", tenantMiddleware(d)), ph)
}

func registerEntityRoutesOn(g fiber.Router, h *entityHandler) {
	g.Get("/:path_segment", h.list)
	g.Post("/:path_segment", h.create)
	g.Post("/:path_segment/bulk", h.bulkCreate)
	g.Patch("/:path_segment/bulk", h.bulkUpdate)
	g.Get("/:path_segment/:id", h.read)
	g.Patch("/:path_segment/:id", h.update)
	g.Delete("/:path_segment/:id", h.delete)
}

// entityContext resolves packageID, the resolved model, the target
// entity, and a bound crud.Service for one request, the common preamble
// every entity handler below needs.
func (h *entityHandler) entityContext(c *fiber.Ctx, op model.Operation) (*resolve.ResolvedModel, *resolve.ResolvedEntity, *crud.Service, error) {
	rc := requestContext(c)
	packageID, err := h.packageIDFromParams(c)
	if err != nil {
		return nil, nil, nil, err
	}

	m, err := resolvedModel(c.Context(), h.deps, rc, requestTenantID(c), packageID)
	if err != nil {
		return nil, nil, nil, err
	}

	segment := c.Params("path_segment")
	e, ok := m.EntityByPathSegment(segment)
	if !ok {
		return nil, nil, nil, apperr.NotFound("unknown entity: " + segment)
	}
	if !e.Operations[op] {
		return nil, nil, nil, apperr.NotFound(string(op) + " is not enabled for " + segment)
	}

	svc := &crud.Service{Exec: rc.Exec, SchemaOverride: rc.SchemaOverride}
	return m, e, svc, nil
}

func (h *entityHandler) list(c *fiber.Ctx) error {
	m, e, svc, err := h.entityContext(c, model.OpList)
	if err != nil {
		return err
	}
	rows, err := svc.List(c.Context(), m, e, queryParams(c))
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *entityHandler) read(c *fiber.Ctx) error {
	m, e, svc, err := h.entityContext(c, model.OpRead)
	if err != nil {
		return err
	}
	row, err := svc.Read(c.Context(), m, e, c.Params("id"), c.Query("include"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *entityHandler) create(c *fiber.Ctx) error {
	_, e, svc, err := h.entityContext(c, model.OpCreate)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	row, err := svc.Create(c.Context(), e, body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": row})
}

func (h *entityHandler) update(c *fiber.Ctx) error {
	_, e, svc, err := h.entityContext(c, model.OpUpdate)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	row, err := svc.Update(c.Context(), e, c.Params("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *entityHandler) delete(c *fiber.Ctx) error {
	_, e, svc, err := h.entityContext(c, model.OpDelete)
	if err != nil {
		return err
	}
	if err := svc.Delete(c.Context(), e, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *entityHandler) bulkCreate(c *fiber.Ctx) error {
	_, e, svc, err := h.entityContext(c, model.OpBulkCreate)
	if err != nil {
		return err
	}
	var items []map[string]any
	if err := c.BodyParser(&items); err != nil {
		return apperr.BadRequest("invalid JSON body: expected an array")
	}
	rows, err := svc.BulkCreate(c.Context(), e, items)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": rows})
}

func (h *entityHandler) bulkUpdate(c *fiber.Ctx) error {
	_, e, svc, err := h.entityContext(c, model.OpBulkUpdate)
	if err != nil {
		return err
	}
	var items []map[string]any
	if err := c.BodyParser(&items); err != nil {
		return apperr.BadRequest("invalid JSON body: expected an array")
	}
	rows, err := svc.BulkUpdate(c.Context(), e, items)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// queryParams flattens fiber's query string into the map[string]string
// shape crud.Service.List expects (filters plus limit/offset/include).
func queryParams(c *fiber.Ctx) map[string]string {
	out := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		out[string(key)] = string(value)
	})
	return out
}
