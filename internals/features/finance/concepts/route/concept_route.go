package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/finance/concepts/controller"
)

func ConceptRoutes(r fiber.Router, ctl *controller.ConceptController) {
	g := r.Group("/concepts")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/:id", ctl.Get)
	g.Put("/:id", ctl.Update)
	g.Delete("/:id", ctl.Deactivate)
}
