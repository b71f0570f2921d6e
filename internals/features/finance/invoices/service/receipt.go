package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"schoolportal_backend/internals/helpers/mailer"
)

const receiptTimeout = 15 * time.Second

type receiptRow struct {
	InvoiceNumber string
	Total         decimal.Decimal
	StudentName   string
	ParentName    string
	ParentEmail   *string
}

// NotifyPaid sends the paid receipt to the parent in the background.
// Failures are logged only.
func (s *InvoiceService) NotifyPaid(ctx context.Context, invoiceID int64) {
	if s.mail == nil {
		return
	}
	var r receiptRow
	found, err := s.gw.FetchOne(ctx, &r, `
SELECT i.invoice_number, i.invoice_total AS total,
       COALESCE(st.student_full_name, '') AS student_name,
       p.parent_full_name AS parent_name, p.parent_email
FROM invoices i
JOIN parents p ON p.parent_id = i.invoice_parent_id
LEFT JOIN students st ON st.student_id = i.invoice_student_id
WHERE i.invoice_id = ?`, invoiceID)
	if err != nil {
		s.log.Warn("receipt lookup failed", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return
	}
	if !found || r.ParentEmail == nil || *r.ParentEmail == "" {
		s.log.Debug("receipt skipped, no parent email", zap.Int64("invoice_id", invoiceID))
		return
	}

	msg := mailer.Message{
		To:      mail.Address{Name: r.ParentName, Address: *r.ParentEmail},
		Subject: "Payment received " + r.InvoiceNumber,
		Text: fmt.Sprintf("Hello %s,\n\nInvoice %s for %s is fully paid (total %s).\n",
			r.ParentName, r.InvoiceNumber, r.StudentName, r.Total.StringFixed(2)),
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptTimeout)
		defer cancel()
		if err := s.mail.Send(sendCtx, msg); err != nil {
			s.log.Warn("receipt mail failed", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		}
	}()
}
