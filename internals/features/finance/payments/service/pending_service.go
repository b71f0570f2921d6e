package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	conceptModel "schoolportal_backend/internals/features/finance/concepts/model"
	invoiceModel "schoolportal_backend/internals/features/finance/invoices/model"
	"schoolportal_backend/internals/features/finance/payments/dto"
	"schoolportal_backend/internals/helpers/apperr"
	"schoolportal_backend/internals/helpers/dbtime"
)

/*
Pending report: every active student crossed with every active monthly concept
that applies to it (global, same level or same grade), minus the pairs already
covered by a paid invoice for the month. A line item covers the month when its
period is (year, month); items without a period fall back to the invoice issue
date.
*/
const pendingQuery = `
SELECT st.student_id, st.student_full_name AS student_name,
       p.parent_id, p.parent_full_name AS parent_name, p.parent_email,
       l.level_id, l.level_name, g.grade_id, g.grade_name,
       c.payment_concept_id AS concept_id, c.payment_concept_name AS concept_name,
       c.payment_concept_amount AS amount
FROM students st
JOIN grades g  ON g.grade_id = st.student_grade_id
JOIN levels l  ON l.level_id = g.grade_level_id
JOIN parents p ON p.parent_id = st.student_parent_id
JOIN payment_concepts c
  ON c.payment_concept_is_active = ?
 AND c.payment_concept_type = ?
 AND (
       (c.payment_concept_level_id IS NULL AND c.payment_concept_grade_id IS NULL)
    OR c.payment_concept_level_id = l.level_id
    OR c.payment_concept_grade_id = g.grade_id
 )
WHERE st.student_is_active = ?
  AND NOT EXISTS (
    SELECT 1
    FROM invoice_items it
    JOIN invoices i ON i.invoice_id = it.invoice_item_invoice_id
    WHERE i.invoice_student_id = st.student_id
      AND i.invoice_status = ?
      AND it.invoice_item_concept_id = c.payment_concept_id
      AND (
            (it.invoice_item_period_year = ? AND it.invoice_item_period_month = ?)
         OR (it.invoice_item_period_year IS NULL
             AND i.invoice_issue_date >= ? AND i.invoice_issue_date < ?)
      )
  )`

// ListPending returns the unpaid (student, monthly concept) pairs for the month.
func (s *PaymentService) ListPending(ctx context.Context, f dto.PendingFilter) ([]dto.PendingRow, error) {
	fields := map[string]string{}
	if f.Year < 2000 || f.Year > 2100 {
		fields["year"] = "year must be between 2000 and 2100"
	}
	if f.Month < 1 || f.Month > 12 {
		fields["month"] = "month must be between 1 and 12"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("validation failed", fields)
	}

	from := dbtime.MonthStart(f.Year, time.Month(f.Month))
	to := from.AddMonths(1)

	var sb strings.Builder
	sb.WriteString(pendingQuery)
	args := []any{
		true, conceptModel.ConceptTypeMonthly,
		true,
		invoiceModel.InvoiceStatusPaid,
		f.Year, f.Month,
		from, to,
	}
	if f.LevelID != nil {
		sb.WriteString(` AND l.level_id = ?`)
		args = append(args, *f.LevelID)
	}
	if f.GradeID != nil {
		sb.WriteString(` AND g.grade_id = ?`)
		args = append(args, *f.GradeID)
	}
	sb.WriteString(` ORDER BY l.level_name, g.grade_name, st.student_full_name, c.payment_concept_name`)

	rows := []dto.PendingRow{}
	if err := s.gw.FetchMany(ctx, &rows, sb.String(), args...); err != nil {
		return nil, errors.Wrap(err, "list pending payments")
	}
	return rows, nil
}
