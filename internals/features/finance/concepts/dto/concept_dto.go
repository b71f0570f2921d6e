package dto

import (
	"github.com/shopspring/decimal"

	"schoolportal_backend/internals/features/finance/concepts/model"
)

type CreateConceptRequest struct {
	Name           string          `json:"name" validate:"required,max=120"`
	Description    *string         `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type" validate:"required,oneof=enrollment monthly other"`
	LevelID        *int64          `json:"levelId" validate:"omitempty,gt=0"`
	GradeID        *int64          `json:"gradeId" validate:"omitempty,gt=0"`
	DurationMonths *int            `json:"durationMonths" validate:"omitempty,gt=0,lte=120"`
	IsActive       *bool           `json:"isActive"`
}

func (r CreateConceptRequest) ToModel() *model.PaymentConceptModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.PaymentConceptModel{
		PaymentConceptName:           r.Name,
		PaymentConceptDescription:    r.Description,
		PaymentConceptAmount:         r.Amount,
		PaymentConceptType:           model.ConceptType(r.Type),
		PaymentConceptLevelID:        r.LevelID,
		PaymentConceptGradeID:        r.GradeID,
		PaymentConceptDurationMonths: r.DurationMonths,
		PaymentConceptIsActive:       active,
	}
}

// UpdateConceptRequest is a partial update; nil fields are left untouched.
type UpdateConceptRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=120"`
	Description    *string          `json:"description"`
	Amount         *decimal.Decimal `json:"amount"`
	Type           *string          `json:"type" validate:"omitempty,oneof=enrollment monthly other"`
	LevelID        *int64           `json:"levelId" validate:"omitempty,gte=0"`
	GradeID        *int64           `json:"gradeId" validate:"omitempty,gte=0"`
	DurationMonths *int             `json:"durationMonths" validate:"omitempty,gte=0,lte=120"`
	IsActive       *bool            `json:"isActive"`
}

// Updates builds the column map. A zero levelId/gradeId/durationMonths clears the field.
func (r UpdateConceptRequest) Updates() map[string]any {
	u := map[string]any{}
	if r.Name != nil {
		u["payment_concept_name"] = *r.Name
	}
	if r.Description != nil {
		u["payment_concept_description"] = *r.Description
	}
	if r.Amount != nil {
		u["payment_concept_amount"] = *r.Amount
	}
	if r.Type != nil {
		u["payment_concept_type"] = *r.Type
	}
	if r.LevelID != nil {
		u["payment_concept_level_id"] = nullableID(*r.LevelID)
	}
	if r.GradeID != nil {
		u["payment_concept_grade_id"] = nullableID(*r.GradeID)
	}
	if r.DurationMonths != nil {
		if *r.DurationMonths == 0 {
			u["payment_concept_duration_months"] = nil
		} else {
			u["payment_concept_duration_months"] = *r.DurationMonths
		}
	}
	if r.IsActive != nil {
		u["payment_concept_is_active"] = *r.IsActive
	}
	return u
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

type ConceptFilter struct {
	Active *bool
	Type   *string
}
