package details

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/constants"
	conceptController "schoolportal_backend/internals/features/finance/concepts/controller"
	conceptRoute "schoolportal_backend/internals/features/finance/concepts/route"
	gatewayController "schoolportal_backend/internals/features/finance/gateway/controller"
	gatewayRoute "schoolportal_backend/internals/features/finance/gateway/route"
	invoiceController "schoolportal_backend/internals/features/finance/invoices/controller"
	invoiceRoute "schoolportal_backend/internals/features/finance/invoices/route"
	paymentController "schoolportal_backend/internals/features/finance/payments/controller"
	paymentRoute "schoolportal_backend/internals/features/finance/payments/route"
	authMiddleware "schoolportal_backend/internals/middlewares/auth"
)

type FinanceControllers struct {
	Concepts *conceptController.ConceptController
	Invoices *invoiceController.InvoiceController
	Payments *paymentController.PaymentController
	Gateway  *gatewayController.GatewayController
}

// FinancePublicRoutes must be registered before the auth middleware.
func FinancePublicRoutes(api fiber.Router, ctl FinanceControllers) {
	gatewayRoute.GatewayPublicRoutes(api, ctl.Gateway)
}

// FinanceRoutes registers checkout first so the /payments staff guard never
// sees it; the order of registration matters in fiber.
func FinanceRoutes(api fiber.Router, ctl FinanceControllers) {
	gatewayRoute.GatewayRoutes(api, ctl.Gateway)

	me := api.Group("/me", authMiddleware.OnlyRoles(constants.RoleErrorParent("your invoices"), constants.ParentOnly...))
	invoiceRoute.InvoiceParentRoutes(me, ctl.Invoices)

	guard := authMiddleware.StaffReadAdminWrite("finance")
	for _, prefix := range []string{"/invoices", "/payments", "/concepts"} {
		api.Use(prefix, guard)
	}
	invoiceRoute.InvoiceAdminRoutes(api, ctl.Invoices)
	paymentRoute.PaymentRoutes(api, ctl.Payments)
	conceptRoute.ConceptRoutes(api, ctl.Concepts)
}
