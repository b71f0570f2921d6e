package controller

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/finance/payments/dto"
	"schoolportal_backend/internals/features/finance/payments/service"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/apperr"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PaymentController struct {
	Svc       *service.PaymentService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewPaymentController(svc *service.PaymentService, v *helper.Validator, log *zap.Logger) *PaymentController {
	return &PaymentController{Svc: svc, Validator: v, Log: log}
}

// POST /api/payments
func (h *PaymentController) RecordPayment(c *fiber.Ctx) error {
	var req dto.RecordPaymentRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	id, err := h.Svc.RecordPayment(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "payment recorded", id, nil)
}

// GET /api/payments/pending?year=&month=&levelId=&gradeId=
func (h *PaymentController) ListPending(c *fiber.Ctx) error {
	f, err := h.pendingFilter(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	rows, err := h.Svc.ListPending(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonOK(c, "pending payments", rows)
}

// GET /api/payments/pending/export?year=&month=&levelId=&gradeId=
func (h *PaymentController) ExportPending(c *fiber.Ctx) error {
	f, err := h.pendingFilter(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	raw, err := h.Svc.ExportPending(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	c.Set(fiber.HeaderContentType, xlsxMime)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="pending-%04d-%02d.xlsx"`, f.Year, f.Month))
	return c.Send(raw)
}

// Year and month default to the current school month.
func (h *PaymentController) pendingFilter(c *fiber.Ctx) (dto.PendingFilter, error) {
	today := h.Svc.Today()
	f := dto.PendingFilter{
		Year:  c.QueryInt("year", today.Year()),
		Month: c.QueryInt("month", int(today.Month())),
	}
	var err error
	if f.LevelID, err = optionalID(c, "levelId"); err != nil {
		return f, err
	}
	if f.GradeID, err = optionalID(c, "gradeId"); err != nil {
		return f, err
	}
	return f, h.Validator.Struct(f)
}

func optionalID(c *fiber.Ctx, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.ValidationFields("validation failed", map[string]string{key: key + " must be a positive integer"})
	}
	return &id, nil
}
