package helper

import (
	"github.com/gofiber/fiber/v2"
)

// Keys the auth middleware stores in c.Locals.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocParentID = "parent_id"
	LocRawToken = "raw_token"
)

// GetUserIDFromToken returns the authenticated user id or 401.
func GetUserIDFromToken(c *fiber.Ctx) (int64, error) {
	id, ok := c.Locals(LocUserID).(int64)
	if !ok || id <= 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
	}
	return id, nil
}

func GetRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocUserRole).(string)
	return r
}

// GetParentIDFromToken returns the parent linked to the account, 403 when the
// account has none.
func GetParentIDFromToken(c *fiber.Ctx) (int64, error) {
	id, ok := c.Locals(LocParentID).(int64)
	if !ok || id <= 0 {
		return 0, fiber.NewError(fiber.StatusForbidden, "account is not linked to a parent")
	}
	return id, nil
}
