package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/finance/concepts/dto"
	"schoolportal_backend/internals/features/finance/concepts/service"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/apperr"
)

type ConceptController struct {
	Svc       *service.ConceptService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewConceptController(svc *service.ConceptService, v *helper.Validator, log *zap.Logger) *ConceptController {
	return &ConceptController{Svc: svc, Validator: v, Log: log}
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

// POST /api/concepts
func (h *ConceptController) Create(c *fiber.Ctx) error {
	var req dto.CreateConceptRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.Create(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "concept created", m.PaymentConceptID, m)
}

// GET /api/concepts?active=&type=
func (h *ConceptController) List(c *fiber.Ctx) error {
	var f dto.ConceptFilter
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return helper.FromError(c, h.Log, apperr.Validation("active must be true or false"))
		}
		f.Active = &b
	}
	if v := c.Query("type"); v != "" {
		f.Type = &v
	}
	rows, err := h.Svc.List(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "concepts", rows, nil)
}

// GET /api/concepts/:id
func (h *ConceptController) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonOK(c, "concept", m)
}

// PUT /api/concepts/:id
func (h *ConceptController) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	var req dto.UpdateConceptRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonUpdated(c, "concept updated", m)
}

// DELETE /api/concepts/:id
func (h *ConceptController) Deactivate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	if err := h.Svc.Deactivate(c.UserContext(), id); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonUpdated(c, "concept deactivated", fiber.Map{"conceptId": id, "isActive": false})
}
