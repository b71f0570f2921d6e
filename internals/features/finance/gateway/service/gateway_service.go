package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/features/finance/gateway/dto"
	invoiceModel "schoolportal_backend/internals/features/finance/invoices/model"
	invoiceService "schoolportal_backend/internals/features/finance/invoices/service"
	paymentService "schoolportal_backend/internals/features/finance/payments/service"
	settingModel "schoolportal_backend/internals/features/settings/model"
	settingService "schoolportal_backend/internals/features/settings/service"
	"schoolportal_backend/internals/helpers/apperr"
)

type Config struct {
	// ServerKey is the env fallback when no token is passed or stored.
	ServerKey  string
	Currencies []string
	DedupTTL   time.Duration
}

type GatewayService struct {
	gw       *databases.Gateway
	provider Provider
	invoices *invoiceService.InvoiceService
	payments *paymentService.PaymentService
	settings *settingService.SettingService
	rdb      *redis.Client
	cfg      Config
	now      func() time.Time
	log      *zap.Logger
}

func NewGatewayService(
	gw *databases.Gateway,
	provider Provider,
	invoices *invoiceService.InvoiceService,
	payments *paymentService.PaymentService,
	settings *settingService.SettingService,
	rdb *redis.Client,
	cfg Config,
	log *zap.Logger,
) *GatewayService {
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = []string{"IDR"}
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 24 * time.Hour
	}
	return &GatewayService{
		gw: gw, provider: provider,
		invoices: invoices, payments: payments, settings: settings,
		rdb: rdb, cfg: cfg, now: time.Now,
		log: log.Named("gateway"),
	}
}

/* =======================================================================
   Checkout preference
======================================================================= */

// CreatePreference opens a hosted checkout for the invoice's outstanding
// balance, trying each configured currency in order.
func (s *GatewayService) CreatePreference(ctx context.Context, req dto.PreferenceRequest) (*dto.PreferenceResponse, error) {
	inv, err := s.invoices.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != invoiceModel.InvoiceStatusPending {
		return nil, apperr.Conflict(fmt.Sprintf("invoice is %s and cannot be paid online", inv.Status))
	}
	if !inv.Balance.IsPositive() {
		return nil, apperr.Conflict("invoice has no outstanding balance")
	}

	explicit := ""
	if req.AccessToken != nil {
		explicit = *req.AccessToken
	}
	token, err := s.resolveToken(ctx, explicit)
	if err != nil {
		return nil, err
	}

	orderID := GenOrderID(inv.InvoiceID, s.now())
	var lastErr error
	for _, cur := range s.cfg.Currencies {
		res, err := s.provider.CreateCheckout(ctx, token, Checkout{
			OrderID:      orderID,
			Amount:       inv.Balance,
			Currency:     cur,
			Description:  "Invoice " + inv.InvoiceNumber,
			CustomerName: inv.ParentName,
		})
		if err != nil {
			lastErr = err
			s.log.Warn("checkout rejected",
				zap.Int64("invoice_id", inv.InvoiceID),
				zap.String("currency", cur),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("checkout created",
			zap.Int64("invoice_id", inv.InvoiceID),
			zap.String("order_id", orderID),
			zap.String("currency", cur),
		)
		return &dto.PreferenceResponse{
			OK:          true,
			RedirectURL: res.RedirectURL,
			Token:       res.Token,
			OrderID:     orderID,
			Currency:    cur,
		}, nil
	}

	var payload any
	var pe *ProviderError
	if errors.As(lastErr, &pe) {
		payload = pe.Payload
	}
	return nil, apperr.Upstream("payment gateway rejected the checkout", payload, lastErr)
}

func (s *GatewayService) InvoiceOwnedBy(ctx context.Context, invoiceID, parentID int64) (bool, error) {
	return s.invoices.OwnedBy(ctx, invoiceID, parentID)
}

// resolveToken: explicit value, then the stored setting, then the environment.
func (s *GatewayService) resolveToken(ctx context.Context, explicit string) (string, error) {
	if t := strings.TrimSpace(explicit); t != "" {
		return t, nil
	}
	if s.settings != nil {
		v, ok, err := s.settings.Get(ctx, settingModel.KeyGatewayAccessToken)
		if err != nil {
			return "", err
		}
		if t := strings.TrimSpace(v); ok && t != "" {
			return t, nil
		}
	}
	if t := strings.TrimSpace(s.cfg.ServerKey); t != "" {
		return t, nil
	}
	return "", apperr.Validation("payment gateway access token is not configured")
}

/* =======================================================================
   Order ids
======================================================================= */

const orderPrefix = "INV"

// GenOrderID returns INV-<invoiceId>-<yyyymmdd-hhmmss>-<8 hex>.
func GenOrderID(invoiceID int64, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s-%s", orderPrefix, invoiceID, now.Format("20060102-150405"), uuid.NewString()[:8])
}

// ParseOrderID extracts the invoice id from an order id built by GenOrderID.
func ParseOrderID(orderID string) (int64, error) {
	parts := strings.SplitN(strings.TrimSpace(orderID), "-", 3)
	if len(parts) < 2 || parts[0] != orderPrefix {
		return 0, fmt.Errorf("unrecognized order id %q", orderID)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("unrecognized order id %q", orderID)
	}
	return id, nil
}
