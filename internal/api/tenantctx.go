package api

import (
	"github.com/gofiber/fiber/v2"

	"architect/internal/tenant"
)

const localsTenantCtx = "architect.tenantCtx"
const localsTenantID = "architect.tenantID"

// tenantMiddleware builds the per-request tenant.RequestContext from the
// X-Tenant-ID header and stashes it in c.Locals, releasing it (committing
// or closing any pinned RLS connection) once the handler chain returns —
// on every path, including an error.
func tenantMiddleware(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := tenant.ExtractID(c.Get(tenant.HeaderName))
		rc, err := tenant.Build(c.Context(), d.Registry, d.Pools, d.DefaultPool, tenantID)
		if err != nil {
			return err
		}
		defer rc.Release()

		c.Locals(localsTenantCtx, rc)
		c.Locals(localsTenantID, tenantID)
		return c.Next()
	}
}

func requestContext(c *fiber.Ctx) *tenant.RequestContext {
	return c.Locals(localsTenantCtx).(*tenant.RequestContext)
}

func requestTenantID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsTenantID).(string)
	return id
}
