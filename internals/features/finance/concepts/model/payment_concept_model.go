// file: internals/features/finance/concepts/model/payment_concept_model.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConceptType string

const (
	ConceptTypeEnrollment ConceptType = "enrollment"
	ConceptTypeMonthly    ConceptType = "monthly"
	ConceptTypeOther      ConceptType = "other"
)

func (t ConceptType) Valid() bool {
	switch t {
	case ConceptTypeEnrollment, ConceptTypeMonthly, ConceptTypeOther:
		return true
	}
	return false
}

// PaymentConceptModel is a billable catalog entry. Rows are never hard-deleted
// once referenced; deactivation flips PaymentConceptIsActive.
type PaymentConceptModel struct {
	PaymentConceptID int64 `gorm:"column:payment_concept_id;primaryKey;autoIncrement" json:"conceptId"`

	PaymentConceptName        string          `gorm:"column:payment_concept_name;type:varchar(120);not null" json:"name"`
	PaymentConceptDescription *string         `gorm:"column:payment_concept_description;type:text" json:"description,omitempty"`
	PaymentConceptAmount      decimal.Decimal `gorm:"column:payment_concept_amount;type:numeric(12,2);not null" json:"amount"`
	PaymentConceptType        ConceptType     `gorm:"column:payment_concept_type;type:varchar(20);not null;index:ix_concepts_type_active,priority:1" json:"type"`

	// Scope: both nil = every student
	PaymentConceptLevelID *int64 `gorm:"column:payment_concept_level_id;index:ix_concepts_level" json:"levelId,omitempty"`
	PaymentConceptGradeID *int64 `gorm:"column:payment_concept_grade_id;index:ix_concepts_grade" json:"gradeId,omitempty"`

	PaymentConceptDurationMonths *int `gorm:"column:payment_concept_duration_months" json:"durationMonths,omitempty"`
	PaymentConceptIsActive       bool `gorm:"column:payment_concept_is_active;not null;index:ix_concepts_type_active,priority:2" json:"isActive"`

	CreatedAt time.Time `gorm:"column:payment_concept_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:payment_concept_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (PaymentConceptModel) TableName() string { return "payment_concepts" }

// IsGlobal reports whether the concept applies to every level and grade.
func (m *PaymentConceptModel) IsGlobal() bool {
	return m.PaymentConceptLevelID == nil && m.PaymentConceptGradeID == nil
}
