package auth

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/constants"
	helper "schoolportal_backend/internals/helpers"
)

// RoleMiddlewareWithCustomError allows the request when the caller holds one of allowedRoles.
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	if customForbiddenMessage == "" {
		customForbiddenMessage = "forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(helper.LocUserRole).(string)
		if !ok || role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized: missing role information")
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}

func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return RoleMiddlewareWithCustomError(roles, customMessage)
}

// StaffReadAdminWrite lets staff read and only admins mutate.
func StaffReadAdminWrite(feature string) fiber.Handler {
	read := RoleMiddlewareWithCustomError(constants.StaffRoles, constants.RoleErrorStaff(feature))
	write := RoleMiddlewareWithCustomError(constants.AdminOnly, constants.RoleErrorAdmin(feature))
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead:
			return read(c)
		default:
			return write(c)
		}
	}
}
