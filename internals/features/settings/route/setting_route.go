package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/settings/controller"
)

// SettingRoutes mounts under an admin-guarded /api group.
func SettingRoutes(r fiber.Router, ctl *controller.SettingController) {
	g := r.Group("/settings")
	g.Get("/", ctl.List)
	g.Get("/:key", ctl.Get)
	g.Post("/", ctl.Upsert)
}
