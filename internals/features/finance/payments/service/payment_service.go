package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"schoolportal_backend/internals/databases"
	invoiceModel "schoolportal_backend/internals/features/finance/invoices/model"
	invoiceService "schoolportal_backend/internals/features/finance/invoices/service"
	"schoolportal_backend/internals/features/finance/payments/dto"
	"schoolportal_backend/internals/features/finance/payments/model"
	"schoolportal_backend/internals/helpers/apperr"
	"schoolportal_backend/internals/helpers/dbtime"
)

type PaymentService struct {
	gw       *databases.Gateway
	invoices *invoiceService.InvoiceService
	log      *zap.Logger
}

func NewPaymentService(gw *databases.Gateway, invoices *invoiceService.InvoiceService, log *zap.Logger) *PaymentService {
	return &PaymentService{gw: gw, invoices: invoices, log: log.Named("payments")}
}

// Today is the current date in the school timezone.
func (s *PaymentService) Today() dbtime.Date { return s.invoices.Clock().Today() }

// RecordPayment inserts the payment and settles the invoice once the cumulative
// amount reaches the total. Partial payments keep the invoice pending.
func (s *PaymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (int64, error) {
	var (
		id   int64
		paid bool
	)
	err := s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		var err error
		id, paid, err = s.RecordPaymentTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return 0, err
	}
	if paid {
		s.invoices.NotifyPaid(ctx, req.InvoiceID)
	}
	return id, nil
}

// RecordPaymentTx is RecordPayment inside a caller-owned transaction. It
// reports whether the invoice became paid.
func (s *PaymentService) RecordPaymentTx(ctx context.Context, tx *databases.Gateway, req dto.RecordPaymentRequest) (int64, bool, error) {
	method := strings.TrimSpace(req.Method)
	switch {
	case req.Amount == nil:
		return 0, false, apperr.ValidationFields("validation failed", map[string]string{"amount": "amount is a required field"})
	case !req.Amount.IsPositive():
		return 0, false, apperr.ValidationFields("validation failed", map[string]string{"amount": "amount must be greater than 0"})
	case method == "":
		return 0, false, apperr.ValidationFields("validation failed", map[string]string{"method": "method is a required field"})
	}

	inv, err := invoiceService.LockInvoice(ctx, tx, req.InvoiceID)
	if err != nil {
		return 0, false, err
	}
	if inv.InvoiceStatus != invoiceModel.InvoiceStatusPending {
		return 0, false, apperr.Conflict(fmt.Sprintf("invoice is %s and accepts no payments", inv.InvoiceStatus))
	}

	date := s.Today()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	id, err := tx.InsertReturningID(ctx, `
INSERT INTO payments (
  payment_invoice_id, payment_date, payment_amount, payment_method,
  payment_reference, payment_notes, payment_created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING payment_id`,
		req.InvoiceID, date, *req.Amount, model.PaymentMethod(method),
		req.Reference, req.Notes, time.Now(),
	)
	if err != nil {
		return 0, false, errors.Wrap(err, "insert payment")
	}

	sum, err := invoiceService.PaidSum(ctx, tx, req.InvoiceID)
	if err != nil {
		return 0, false, err
	}

	s.log.Info("payment recorded",
		zap.Int64("payment_id", id),
		zap.Int64("invoice_id", req.InvoiceID),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("paid", sum.StringFixed(2)),
		zap.String("total", inv.InvoiceTotal.StringFixed(2)),
	)

	if sum.LessThan(inv.InvoiceTotal) {
		return id, false, nil
	}
	changed, err := s.invoices.SetStatusTx(ctx, tx, req.InvoiceID, invoiceModel.InvoiceStatusPaid)
	if err != nil {
		return 0, false, err
	}
	return id, changed, nil
}
