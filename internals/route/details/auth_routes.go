package details

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/constants"
	authController "schoolportal_backend/internals/features/users/auth/controller"
	authRoute "schoolportal_backend/internals/features/users/auth/route"
	userController "schoolportal_backend/internals/features/users/user/controller"
	userRoute "schoolportal_backend/internals/features/users/user/route"
	authMiddleware "schoolportal_backend/internals/middlewares/auth"
)

func AuthPublicRoutes(api fiber.Router, ctl *authController.AuthController) {
	authRoute.AuthPublicRoutes(api, ctl)
}

func AuthProtectedRoutes(api fiber.Router, ctl *authController.AuthController) {
	authRoute.AuthProtectedRoutes(api, ctl)
}

// UserRoutes: account management, admin only.
func UserRoutes(api fiber.Router, ctl *userController.UserController) {
	api.Use("/users", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("user management"), constants.AdminOnly...))
	userRoute.UserAdminRoutes(api, ctl)
}
