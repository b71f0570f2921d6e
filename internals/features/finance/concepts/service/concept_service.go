package service

import (
	"context"

	"github.com/pkg/errors"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/features/finance/concepts/dto"
	"schoolportal_backend/internals/features/finance/concepts/model"
	"schoolportal_backend/internals/helpers/apperr"
)

type ConceptService struct {
	gw *databases.Gateway
}

func NewConceptService(gw *databases.Gateway) *ConceptService {
	return &ConceptService{gw: gw}
}

func (s *ConceptService) Create(ctx context.Context, req dto.CreateConceptRequest) (*model.PaymentConceptModel, error) {
	if req.Amount.IsNegative() {
		return nil, apperr.ValidationFields("validation failed", map[string]string{"amount": "amount must not be negative"})
	}
	m := req.ToModel()
	if err := s.gw.DB(ctx).Create(m).Error; err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

func (s *ConceptService) List(ctx context.Context, f dto.ConceptFilter) ([]model.PaymentConceptModel, error) {
	out := []model.PaymentConceptModel{}
	q := s.gw.DB(ctx).Order("payment_concept_type ASC, payment_concept_name ASC")
	if f.Active != nil {
		q = q.Where("payment_concept_is_active = ?", *f.Active)
	}
	if f.Type != nil {
		q = q.Where("payment_concept_type = ?", *f.Type)
	}
	err := q.Find(&out).Error
	return out, errors.Wrap(err, "list concepts")
}

func (s *ConceptService) Get(ctx context.Context, id int64) (*model.PaymentConceptModel, error) {
	var m model.PaymentConceptModel
	if err := s.gw.DB(ctx).Where("payment_concept_id = ?", id).Take(&m).Error; err != nil {
		if apperr.Is(apperr.From(err), apperr.KindNotFound) {
			return nil, apperr.NotFound("concept not found")
		}
		return nil, errors.Wrap(err, "get concept")
	}
	return &m, nil
}

func (s *ConceptService) Update(ctx context.Context, id int64, req dto.UpdateConceptRequest) (*model.PaymentConceptModel, error) {
	if req.Amount != nil && req.Amount.IsNegative() {
		return nil, apperr.ValidationFields("validation failed", map[string]string{"amount": "amount must not be negative"})
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if u := req.Updates(); len(u) > 0 {
		if err := s.gw.DB(ctx).Model(&model.PaymentConceptModel{}).
			Where("payment_concept_id = ?", id).
			Updates(u).Error; err != nil {
			return nil, apperr.From(err)
		}
	}
	return s.Get(ctx, id)
}

// Deactivate is the only delete: referenced concepts must stay readable.
func (s *ConceptService) Deactivate(ctx context.Context, id int64) error {
	res, err := s.gw.Exec(ctx,
		`UPDATE payment_concepts SET payment_concept_is_active = ?, payment_concept_updated_at = CURRENT_TIMESTAMP WHERE payment_concept_id = ?`,
		false, id)
	if err != nil {
		return errors.Wrap(err, "deactivate concept")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("concept not found")
	}
	return nil
}

// ActiveEnrollmentConcepts returns active enrollment concepts of the level or
// the grade plus the global ones. gw may be a transaction scope.
func ActiveEnrollmentConcepts(ctx context.Context, gw *databases.Gateway, levelID, gradeID int64) ([]model.PaymentConceptModel, error) {
	out := []model.PaymentConceptModel{}
	err := gw.DB(ctx).
		Where("payment_concept_is_active = ? AND payment_concept_type = ?", true, model.ConceptTypeEnrollment).
		Where("(payment_concept_level_id = ? OR payment_concept_grade_id = ? OR (payment_concept_level_id IS NULL AND payment_concept_grade_id IS NULL))", levelID, gradeID).
		Order("payment_concept_id ASC").
		Find(&out).Error
	return out, errors.Wrap(err, "active enrollment concepts")
}
