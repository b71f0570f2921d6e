package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/settings/dto"
	"schoolportal_backend/internals/features/settings/model"
	"schoolportal_backend/internals/features/settings/service"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/apperr"
)

type SettingController struct {
	Svc       *service.SettingService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewSettingController(svc *service.SettingService, v *helper.Validator, log *zap.Logger) *SettingController {
	return &SettingController{Svc: svc, Validator: v, Log: log}
}

// GET /api/settings
func (h *SettingController) List(c *fiber.Ctx) error {
	rows, err := h.Svc.All(c.UserContext())
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonOK(c, "settings", dto.FromModels(rows))
}

// GET /api/settings/:key
func (h *SettingController) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	val, ok, err := h.Svc.Get(c.UserContext(), key)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	if !ok {
		return helper.FromError(c, h.Log, apperr.NotFound("setting not found"))
	}
	return helper.JsonOK(c, "setting", dto.FromModel(model.SettingModel{SettingKey: key, SettingValue: val}))
}

// POST /api/settings
func (h *SettingController) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertSettingsRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	pairs := req.Pairs()
	if err := h.Svc.UpsertMany(c.UserContext(), pairs); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonUpdated(c, "settings saved", fiber.Map{"count": len(pairs)})
}
