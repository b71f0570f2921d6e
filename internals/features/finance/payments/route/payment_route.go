package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/finance/payments/controller"
)

// PaymentRoutes: staff group under /api.
func PaymentRoutes(r fiber.Router, ctl *controller.PaymentController) {
	g := r.Group("/payments")
	g.Post("/", ctl.RecordPayment)
	g.Get("/pending", ctl.ListPending)
	g.Get("/pending/export", ctl.ExportPending)
}
