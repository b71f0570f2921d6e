// file: internals/features/finance/invoices/model/invoice_model.go
package model

import (
	"errors"
	"time"

	"schoolportal_backend/internals/helpers/dbtime"

	"github.com/shopspring/decimal"
)

/* ===================== Status ===================== */

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid invoice status transition")

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transition.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanTransition: pending -> {pending, paid, cancelled}; nothing leaves paid/cancelled.
func (s InvoiceStatus) CanTransition(to InvoiceStatus) bool {
	if !to.Valid() || s.Terminal() {
		return false
	}
	return s == InvoiceStatusPending
}

/* ===================== Invoice ===================== */

type InvoiceModel struct {
	InvoiceID int64 `gorm:"column:invoice_id;primaryKey;autoIncrement" json:"invoiceId"`

	InvoiceParentID  int64  `gorm:"column:invoice_parent_id;not null;index:ix_invoices_parent" json:"parentId"`
	InvoiceStudentID int64  `gorm:"column:invoice_student_id;not null;index:ix_invoices_student" json:"studentId"`
	InvoiceNumber    string `gorm:"column:invoice_number;type:varchar(60);not null;uniqueIndex:uq_invoices_number" json:"invoiceNumber"`

	InvoiceIssueDate dbtime.Date `gorm:"column:invoice_issue_date;type:date;not null" json:"issueDate"`
	InvoiceDueDate   dbtime.Date `gorm:"column:invoice_due_date;type:date;not null" json:"dueDate"`

	InvoiceSubtotal decimal.Decimal `gorm:"column:invoice_subtotal;type:numeric(12,2);not null" json:"subtotal"`
	InvoiceDiscount decimal.Decimal `gorm:"column:invoice_discount;type:numeric(12,2);not null;default:0" json:"discount"`
	InvoiceTotal    decimal.Decimal `gorm:"column:invoice_total;type:numeric(12,2);not null" json:"total"`

	InvoiceStatus InvoiceStatus `gorm:"column:invoice_status;type:varchar(20);not null;default:'pending';index:ix_invoices_status" json:"status"`
	InvoiceNotes  *string       `gorm:"column:invoice_notes;type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:invoice_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:invoice_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (InvoiceModel) TableName() string { return "invoices" }

/* ===================== Line item ===================== */

type InvoiceItemModel struct {
	InvoiceItemID        int64  `gorm:"column:invoice_item_id;primaryKey;autoIncrement" json:"itemId"`
	InvoiceItemInvoiceID int64  `gorm:"column:invoice_item_invoice_id;not null;index:ix_invoice_items_invoice" json:"invoiceId"`
	InvoiceItemConceptID *int64 `gorm:"column:invoice_item_concept_id;index:ix_invoice_items_concept" json:"conceptId,omitempty"`

	InvoiceItemDescription string          `gorm:"column:invoice_item_description;type:varchar(200);not null" json:"description"`
	InvoiceItemQuantity    int             `gorm:"column:invoice_item_quantity;not null;default:1" json:"quantity"`
	InvoiceItemUnitPrice   decimal.Decimal `gorm:"column:invoice_item_unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	InvoiceItemTotal       decimal.Decimal `gorm:"column:invoice_item_total;type:numeric(12,2);not null" json:"total"`

	// Billing period for monthly concepts; nil falls back to the invoice issue date.
	InvoiceItemPeriodYear  *int `gorm:"column:invoice_item_period_year" json:"periodYear,omitempty"`
	InvoiceItemPeriodMonth *int `gorm:"column:invoice_item_period_month" json:"periodMonth,omitempty"`

	CreatedAt time.Time `gorm:"column:invoice_item_created_at;autoCreateTime" json:"createdAt"`
}

func (InvoiceItemModel) TableName() string { return "invoice_items" }
