package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/users/auth/controller"
	rateLimiter "schoolportal_backend/internals/middlewares"
)

// AuthPublicRoutes: /api/auth without a token.
func AuthPublicRoutes(r fiber.Router, ctl *controller.AuthController) {
	g := r.Group("/auth")
	g.Post("/login", rateLimiter.LoginRateLimiter(), ctl.Login)
}

// AuthProtectedRoutes: /api/auth behind the auth middleware.
func AuthProtectedRoutes(r fiber.Router, ctl *controller.AuthController) {
	g := r.Group("/auth")
	g.Post("/logout", ctl.Logout)
	g.Get("/me", ctl.Me)
}
