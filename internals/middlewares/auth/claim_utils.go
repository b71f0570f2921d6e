package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	authService "schoolportal_backend/internals/features/users/auth/service"
	helper "schoolportal_backend/internals/helpers"
)

// extractBearerToken reads Authorization, falling back to the access_token cookie.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - no token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("unauthorized - empty token")
	}
	return tok, nil
}

func storeClaimsToLocals(c *fiber.Ctx, claims *authService.Claims, raw string) {
	c.Locals(helper.LocUserID, claims.UserID)
	c.Locals(helper.LocUserRole, claims.Role)
	c.Locals(helper.LocRawToken, raw)
	if claims.ParentID != nil {
		c.Locals(helper.LocParentID, *claims.ParentID)
	}
}
