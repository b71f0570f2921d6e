package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"schoolportal_backend/internals/features/finance/invoices/model"
	"schoolportal_backend/internals/helpers/dbtime"
)

/* ===================== Requests ===================== */

type CreateInvoiceItemRequest struct {
	ConceptID   *int64          `json:"conceptId" validate:"omitempty,gt=0"`
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    int             `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PeriodYear  *int            `json:"periodYear" validate:"required_with=PeriodMonth,omitempty,gte=2000,lte=2100"`
	PeriodMonth *int            `json:"periodMonth" validate:"required_with=PeriodYear,omitempty,gte=1,lte=12"`
}

// LineTotal is quantity x unit price; quantity defaults to 1.
func (r CreateInvoiceItemRequest) LineTotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.qty())))
}

func (r CreateInvoiceItemRequest) qty() int {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

func (r CreateInvoiceItemRequest) ToModel(invoiceID int64) model.InvoiceItemModel {
	return model.InvoiceItemModel{
		InvoiceItemInvoiceID:   invoiceID,
		InvoiceItemConceptID:   r.ConceptID,
		InvoiceItemDescription: r.Description,
		InvoiceItemQuantity:    r.qty(),
		InvoiceItemUnitPrice:   r.UnitPrice,
		InvoiceItemTotal:       r.LineTotal(),
		InvoiceItemPeriodYear:  r.PeriodYear,
		InvoiceItemPeriodMonth: r.PeriodMonth,
	}
}

type CreateInvoiceRequest struct {
	ParentID      int64                      `json:"parentId" validate:"required,gt=0"`
	StudentID     int64                      `json:"studentId" validate:"required,gt=0"`
	Total         *decimal.Decimal           `json:"total" validate:"required"`
	Subtotal      *decimal.Decimal           `json:"subtotal"`
	Discount      *decimal.Decimal           `json:"discount"`
	IssueDate     *dbtime.Date               `json:"issueDate"`
	DueDate       *dbtime.Date               `json:"dueDate"`
	Notes         *string                    `json:"notes"`
	InvoiceNumber *string                    `json:"invoiceNumber" validate:"omitempty,max=60"`
	Items         []CreateInvoiceItemRequest `json:"items" validate:"omitempty,dive"`
}

type EnrollmentInvoiceRequest struct {
	StudentID int64 `json:"studentId" validate:"required,gt=0"`
	ParentID  int64 `json:"parentId" validate:"required,gt=0"`
	LevelID   int64 `json:"levelId" validate:"required,gt=0"`
}

type ListFilter struct {
	Status *model.InvoiceStatus
	Limit  int
	Offset int
}

/* ===================== Responses ===================== */

// InvoiceRow is an invoice joined with display names and the amount paid so far.
type InvoiceRow struct {
	InvoiceID     int64               `json:"invoiceId"`
	InvoiceNumber string              `json:"invoiceNumber"`
	ParentID      int64               `json:"parentId"`
	ParentName    string              `json:"parentName"`
	StudentID     int64               `json:"studentId"`
	StudentName   string              `json:"studentName"`
	IssueDate     dbtime.Date         `json:"issueDate"`
	DueDate       dbtime.Date         `json:"dueDate"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	PaidAmount    decimal.Decimal     `json:"paidAmount"`
	Status        model.InvoiceStatus `json:"status"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type PaymentLine struct {
	PaymentID int64           `json:"paymentId"`
	Date      dbtime.Date     `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference *string         `json:"reference,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
}

type ItemLine struct {
	ItemID      int64           `json:"itemId"`
	ConceptID   *int64          `json:"conceptId,omitempty"`
	ConceptName *string         `json:"conceptName,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	PeriodYear  *int            `json:"periodYear,omitempty"`
	PeriodMonth *int            `json:"periodMonth,omitempty"`
}

type InvoiceDetail struct {
	InvoiceRow
	Balance  decimal.Decimal `json:"balance"`
	Items    []ItemLine      `json:"items"`
	Payments []PaymentLine   `json:"payments"`
}
