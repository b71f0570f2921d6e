package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/users/auth/dto"
	authService "schoolportal_backend/internals/features/users/auth/service"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/apperr"
)

// UserController is the admin-facing account management API.
type UserController struct {
	Svc       *authService.AuthService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewUserController(svc *authService.AuthService, v *helper.Validator, log *zap.Logger) *UserController {
	return &UserController{Svc: svc, Validator: v, Log: log}
}

// GET /api/users?role=
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	users, err := uc.Svc.ListUsers(c.UserContext(), c.Query("role"))
	if err != nil {
		return helper.FromError(c, uc.Log, err)
	}
	return helper.JsonList(c, "users", users, nil)
}

// POST /api/users
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := uc.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, uc.Log, err)
	}
	u, err := uc.Svc.CreateUser(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, uc.Log, err)
	}
	return helper.JsonCreated(c, "user created", u.UserID, dto.FromUser(*u))
}

// PATCH /api/users/:id/active
func (uc *UserController) SetActive(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return helper.FromError(c, uc.Log, apperr.Validation("invalid user id"))
	}
	var req dto.SetActiveRequest
	if err := uc.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, uc.Log, err)
	}
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, uc.Log, err)
	}
	if err := uc.Svc.SetActive(c.UserContext(), actorID, id, *req.IsActive); err != nil {
		return helper.FromError(c, uc.Log, err)
	}
	return helper.JsonUpdated(c, "user updated", fiber.Map{"userId": id, "isActive": *req.IsActive})
}
