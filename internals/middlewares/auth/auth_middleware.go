package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	authService "schoolportal_backend/internals/features/users/auth/service"
	helper "schoolportal_backend/internals/helpers"
)

// AuthMiddleware verifies the bearer token, rejects logged-out tokens and
// disabled accounts, then stores the claims in Locals.
func AuthMiddleware(svc *authService.AuthService, log *zap.Logger) fiber.Handler {
	log = log.Named("auth-mw")
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims, err := svc.Tokens().Parse(tokenString)
		if err != nil {
			log.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - invalid or expired token")
		}

		ctx := c.UserContext()
		listed, err := svc.Blacklisted(ctx, tokenString)
		if err != nil {
			log.Error("blacklist lookup failed", zap.Error(err))
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if listed {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token is blacklisted")
		}

		active, err := svc.ActiveUser(ctx, claims.UserID)
		if err != nil {
			log.Error("user lookup failed", zap.Error(err))
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if !active {
			return helper.JsonError(c, fiber.StatusForbidden, "account is disabled")
		}

		storeClaimsToLocals(c, claims, tokenString)
		return c.Next()
	}
}
