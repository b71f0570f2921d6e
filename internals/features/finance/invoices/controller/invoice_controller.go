// file: internals/features/finance/invoices/controller/invoice_controller.go
package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/finance/invoices/dto"
	"schoolportal_backend/internals/features/finance/invoices/model"
	"schoolportal_backend/internals/features/finance/invoices/service"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/apperr"
)

/* =======================================================================
   Controller
======================================================================= */

type InvoiceController struct {
	Svc       *service.InvoiceService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewInvoiceController(svc *service.InvoiceService, v *helper.Validator, log *zap.Logger) *InvoiceController {
	return &InvoiceController{Svc: svc, Validator: v, Log: log}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

/* =======================================================================
   Handlers
======================================================================= */

// POST /api/invoices
func (h *InvoiceController) Create(c *fiber.Ctx) error {
	var req dto.CreateInvoiceRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	id, err := h.Svc.Create(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "invoice created", id, nil)
}

// POST /api/invoices/enrollment
func (h *InvoiceController) CreateEnrollment(c *fiber.Ctx) error {
	var req dto.EnrollmentInvoiceRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	id, err := h.Svc.GenerateEnrollment(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "enrollment invoice created", id, nil)
}

// GET /api/invoices?status=&page=&per_page=
func (h *InvoiceController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 200)
	f := dto.ListFilter{Limit: paging.Limit, Offset: paging.Offset}
	if v := c.Query("status"); v != "" {
		st := model.InvoiceStatus(v)
		if !st.Valid() {
			return helper.FromError(c, h.Log, apperr.ValidationFields("validation failed",
				map[string]string{"status": "status must be one of pending paid cancelled"}))
		}
		f.Status = &st
	}
	rows, total, err := h.Svc.ListAll(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "invoices", rows, helper.BuildPagination(total, paging, len(rows)))
}

// GET /api/invoices/:id
func (h *InvoiceController) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	inv, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonOK(c, "invoice", inv)
}

// GET /api/parents/:id/invoices
func (h *InvoiceController) ListByParent(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	rows, err := h.Svc.ListByParent(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "invoices", rows, nil)
}

/* =======================================================================
   Parent self-service
======================================================================= */

// GET /api/me/invoices
func (h *InvoiceController) ListMine(c *fiber.Ctx) error {
	parentID, err := helper.GetParentIDFromToken(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	rows, err := h.Svc.ListByParent(c.UserContext(), parentID)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "invoices", rows, nil)
}

// GET /api/me/invoices/:id
func (h *InvoiceController) GetMine(c *fiber.Ctx) error {
	parentID, err := helper.GetParentIDFromToken(c)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	owned, err := h.Svc.OwnedBy(c.UserContext(), id, parentID)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	if !owned {
		// same answer as a missing invoice
		return helper.FromError(c, h.Log, apperr.NotFound("invoice not found"))
	}
	inv, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonOK(c, "invoice", inv)
}
