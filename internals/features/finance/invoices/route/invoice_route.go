package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/finance/invoices/controller"
)

// InvoiceAdminRoutes: admin group under /api.
func InvoiceAdminRoutes(r fiber.Router, ctl *controller.InvoiceController) {
	g := r.Group("/invoices")
	g.Post("/", ctl.Create)
	g.Post("/enrollment", ctl.CreateEnrollment)
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)

	r.Get("/parents/:id/invoices", ctl.ListByParent)
}

// InvoiceParentRoutes: parent group under /api/me.
func InvoiceParentRoutes(r fiber.Router, ctl *controller.InvoiceController) {
	r.Get("/invoices", ctl.ListMine)
	r.Get("/invoices/:id", ctl.GetMine)
}
