package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/finance/gateway/controller"
)

// GatewayRoutes: checkout for any authenticated role; the handler checks ownership.
func GatewayRoutes(r fiber.Router, ctl *controller.GatewayController) {
	r.Post("/payments/gateway/preference", ctl.CreatePreference)
}

// GatewayPublicRoutes: provider callbacks. Register before the auth middleware.
func GatewayPublicRoutes(r fiber.Router, ctl *controller.GatewayController) {
	r.Post("/payments/gateway/webhook", ctl.Webhook)
}
