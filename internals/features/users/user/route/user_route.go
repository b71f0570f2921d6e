package route

import (
	"github.com/gofiber/fiber/v2"

	userController "schoolportal_backend/internals/features/users/user/controller"
)

// UserAdminRoutes: mount behind an admin guard.
func UserAdminRoutes(r fiber.Router, ctl *userController.UserController) {
	users := r.Group("/users")
	users.Get("/", ctl.GetUsers)
	users.Post("/", ctl.CreateUser)
	users.Patch("/:id/active", ctl.SetActive)
}
