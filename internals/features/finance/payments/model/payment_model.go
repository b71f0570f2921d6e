// file: internals/features/finance/payments/model/payment_model.go
package model

import (
	"time"

	"schoolportal_backend/internals/helpers/dbtime"

	"github.com/shopspring/decimal"
)

/* ===================== Model ===================== */

// PaymentModel is insert-only. Cumulative amounts per invoice drive the paid status.
type PaymentModel struct {
	PaymentID        int64 `gorm:"column:payment_id;primaryKey;autoIncrement" json:"paymentId"`
	PaymentInvoiceID int64 `gorm:"column:payment_invoice_id;not null;index:ix_payments_invoice" json:"invoiceId"`

	PaymentDate   dbtime.Date     `gorm:"column:payment_date;type:date;not null" json:"date"`
	PaymentAmount decimal.Decimal `gorm:"column:payment_amount;type:numeric(12,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"column:payment_method;type:varchar(40);not null" json:"method"`

	// Gateway transaction id for gateway payments, receipt number for manual ones
	PaymentReference *string `gorm:"column:payment_reference;type:varchar(120)" json:"reference,omitempty"`
	PaymentNotes     *string `gorm:"column:payment_notes;type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"createdAt"`
}

func (PaymentModel) TableName() string { return "payments" }

func (p *PaymentModel) IsGateway() bool {
	return p.PaymentMethod == PaymentMethodGateway
}
