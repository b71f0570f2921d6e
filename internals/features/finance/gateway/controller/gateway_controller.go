package controller

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/constants"
	"schoolportal_backend/internals/features/finance/gateway/dto"
	"schoolportal_backend/internals/features/finance/gateway/service"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/apperr"
)

type GatewayController struct {
	Svc       *service.GatewayService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewGatewayController(svc *service.GatewayService, v *helper.Validator, log *zap.Logger) *GatewayController {
	return &GatewayController{Svc: svc, Validator: v, Log: log}
}

// POST /api/payments/gateway/preference
func (h *GatewayController) CreatePreference(c *fiber.Ctx) error {
	var req dto.PreferenceRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	if err := h.authorize(c, req.InvoiceID); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	res, err := h.Svc.CreatePreference(c.UserContext(), req)
	if err != nil {
		ae := apperr.From(err)
		if ae.Kind == apperr.KindInternal {
			return helper.FromError(c, h.Log, err)
		}
		h.Log.Warn("checkout preference failed", zap.Int64("invoice_id", req.InvoiceID), zap.Error(err))
		return c.Status(ae.Status()).JSON(dto.PreferenceFailure{
			OK:      false,
			Message: ae.Message,
			Error:   ae.Payload,
		})
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// Admins may check out any invoice, parents only their own.
func (h *GatewayController) authorize(c *fiber.Ctx, invoiceID int64) error {
	switch helper.GetRole(c) {
	case constants.RoleAdmin:
		return nil
	case constants.RoleParent:
		parentID, err := helper.GetParentIDFromToken(c)
		if err != nil {
			return err
		}
		owned, err := h.Svc.InvoiceOwnedBy(c.UserContext(), invoiceID, parentID)
		if err != nil {
			return err
		}
		if !owned {
			return apperr.NotFound("invoice not found")
		}
		return nil
	default:
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorParent("online checkout"))
	}
}

// POST /api/payments/gateway/webhook
//
// Always 200: the provider retries anything else.
func (h *GatewayController) Webhook(c *fiber.Ctx) error {
	body := map[string]any{}
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	raw := c.Body()

	if strings.Contains(ct, "application/json") && len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &body); err != nil {
			h.Log.Warn("webhook json parse failed", zap.Error(err))
		}
	}
	if len(body) == 0 {
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			body[string(k)] = string(v)
		})
	}
	if len(body) == 0 {
		h.Log.Warn("webhook body empty", zap.String("content_type", ct))
		return c.Status(fiber.StatusOK).JSON(dto.WebhookAck{OK: true})
	}

	h.Svc.HandleWebhook(c.UserContext(), body)
	return c.Status(fiber.StatusOK).JSON(dto.WebhookAck{OK: true})
}
