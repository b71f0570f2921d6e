package dto

import (
	"github.com/shopspring/decimal"

	"schoolportal_backend/internals/helpers/dbtime"
)

type RecordPaymentRequest struct {
	InvoiceID int64            `json:"invoiceId" validate:"required,gt=0"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Method    string           `json:"method" validate:"required,max=40"`
	Date      *dbtime.Date     `json:"date"`
	Reference *string          `json:"reference" validate:"omitempty,max=120"`
	Notes     *string          `json:"notes"`
}

type PendingFilter struct {
	Year    int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Month   int    `json:"month" validate:"required,gte=1,lte=12"`
	LevelID *int64 `json:"levelId" validate:"omitempty,gt=0"`
	GradeID *int64 `json:"gradeId" validate:"omitempty,gt=0"`
}

// PendingRow is one (student, monthly concept) pair without a paid invoice for the month.
type PendingRow struct {
	StudentID   int64           `json:"studentId"`
	StudentName string          `json:"studentName"`
	ParentID    int64           `json:"parentId"`
	ParentName  string          `json:"parentName"`
	ParentEmail *string         `json:"parentEmail,omitempty"`
	LevelID     int64           `json:"levelId"`
	LevelName   string          `json:"levelName"`
	GradeID     int64           `json:"gradeId"`
	GradeName   string          `json:"gradeName"`
	ConceptID   int64           `json:"conceptId"`
	ConceptName string          `json:"conceptName"`
	Amount      decimal.Decimal `json:"amount"`
}
