package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/users/auth/dto"
	"schoolportal_backend/internals/features/users/auth/service"
	helper "schoolportal_backend/internals/helpers"
)

type AuthController struct {
	Svc       *service.AuthService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewAuthController(svc *service.AuthService, v *helper.Validator, log *zap.Logger) *AuthController {
	return &AuthController{Svc: svc, Validator: v, Log: log}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ac.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, ac.Log, err)
	}
	res, err := ac.Svc.Login(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, ac.Log, err)
	}
	return helper.JsonOK(c, "login successful", res)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Svc.Logout(c.UserContext(), helper.GetRawAccessToken(c)); err != nil {
		return helper.FromError(c, ac.Log, err)
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "logout successful", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, ac.Log, err)
	}
	me, err := ac.Svc.Me(c.UserContext(), userID)
	if err != nil {
		return helper.FromError(c, ac.Log, err)
	}
	return helper.JsonOK(c, "current user", me)
}
