package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolportal_backend/internals/databases"
	conceptService "schoolportal_backend/internals/features/finance/concepts/service"
	"schoolportal_backend/internals/features/finance/invoices/dto"
	"schoolportal_backend/internals/features/finance/invoices/model"
	"schoolportal_backend/internals/helpers/apperr"
	"schoolportal_backend/internals/helpers/dbtime"
	"schoolportal_backend/internals/helpers/mailer"
)

const defaultDueDays = 30

type InvoiceService struct {
	gw      *databases.Gateway
	clock   dbtime.Clock
	numbers *NumberGenerator
	mail    mailer.Sender
	log     *zap.Logger
}

// NewInvoiceService wires the workflow. mail may be nil to disable receipts.
func NewInvoiceService(gw *databases.Gateway, clock dbtime.Clock, mail mailer.Sender, log *zap.Logger) *InvoiceService {
	if clock == nil {
		clock = time.Now
	}
	return &InvoiceService{
		gw:      gw,
		clock:   clock,
		numbers: NewNumberGenerator(clock),
		mail:    mail,
		log:     log.Named("invoices"),
	}
}

func (s *InvoiceService) Clock() dbtime.Clock { return s.clock }

/* =======================================================================
   Create
======================================================================= */

// Create inserts the invoice and its optional line items in one transaction.
func (s *InvoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (int64, error) {
	var id int64
	err := s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		var err error
		id, err = s.insert(ctx, tx, req)
		return err
	})
	return id, err
}

// GenerateEnrollment bills every active enrollment concept of the student's
// level and grade plus the global ones, one line item each. levelId must be
// the level the student's grade belongs to.
func (s *InvoiceService) GenerateEnrollment(ctx context.Context, req dto.EnrollmentInvoiceRequest) (int64, error) {
	var id int64
	err := s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		pl, err := studentPlacement(ctx, tx, req.StudentID)
		if err != nil {
			return err
		}
		if pl.LevelID != req.LevelID {
			return apperr.ValidationFields("validation failed", map[string]string{"levelId": "student is not in this level"})
		}

		concepts, err := conceptService.ActiveEnrollmentConcepts(ctx, tx, pl.LevelID, pl.GradeID)
		if err != nil {
			return err
		}
		if len(concepts) == 0 {
			return apperr.Validation("no active enrollment concepts for this level")
		}

		total := decimal.Zero
		items := make([]dto.CreateInvoiceItemRequest, 0, len(concepts))
		for _, c := range concepts {
			conceptID := c.PaymentConceptID
			items = append(items, dto.CreateInvoiceItemRequest{
				ConceptID:   &conceptID,
				Description: c.PaymentConceptName,
				Quantity:    1,
				UnitPrice:   c.PaymentConceptAmount,
			})
			total = total.Add(c.PaymentConceptAmount)
		}

		notes := "Enrollment"
		id, err = s.insert(ctx, tx, dto.CreateInvoiceRequest{
			ParentID:  req.ParentID,
			StudentID: req.StudentID,
			Total:     &total,
			Notes:     &notes,
			Items:     items,
		})
		return err
	})
	return id, err
}

func (s *InvoiceService) insert(ctx context.Context, tx *databases.Gateway, req dto.CreateInvoiceRequest) (int64, error) {
	inv, err := s.prepare(req)
	if err != nil {
		return 0, err
	}
	if err := checkStudentOfParent(ctx, tx, req.StudentID, req.ParentID); err != nil {
		return 0, err
	}

	now := time.Now()
	id, err := tx.InsertReturningID(ctx, `
INSERT INTO invoices (
  invoice_parent_id, invoice_student_id, invoice_number,
  invoice_issue_date, invoice_due_date,
  invoice_subtotal, invoice_discount, invoice_total,
  invoice_status, invoice_notes, invoice_created_at, invoice_updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING invoice_id`,
		inv.InvoiceParentID, inv.InvoiceStudentID, inv.InvoiceNumber,
		inv.InvoiceIssueDate, inv.InvoiceDueDate,
		inv.InvoiceSubtotal, inv.InvoiceDiscount, inv.InvoiceTotal,
		inv.InvoiceStatus, inv.InvoiceNotes, now, now,
	)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflict("invoice number already exists")
		}
		return 0, pkgerrors.Wrap(err, "insert invoice")
	}

	if len(req.Items) > 0 {
		items := make([]model.InvoiceItemModel, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, it.ToModel(id))
		}
		if err := tx.DB(ctx).Create(&items).Error; err != nil {
			return 0, pkgerrors.Wrap(err, "insert invoice items")
		}
	}

	s.log.Info("invoice created",
		zap.Int64("invoice_id", id),
		zap.String("number", inv.InvoiceNumber),
		zap.String("total", inv.InvoiceTotal.StringFixed(2)),
	)
	return id, nil
}

// prepare applies defaults and the amount rules: total = subtotal - discount,
// and line items (when given) add up to the subtotal.
func (s *InvoiceService) prepare(req dto.CreateInvoiceRequest) (*model.InvoiceModel, error) {
	fields := map[string]string{}
	if req.ParentID <= 0 {
		fields["parentId"] = "parentId is a required field"
	}
	if req.StudentID <= 0 {
		fields["studentId"] = "studentId is a required field"
	}
	if req.Total == nil {
		fields["total"] = "total is a required field"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("validation failed", fields)
	}

	total := *req.Total
	subtotal := total
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}
	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	switch {
	case total.IsNegative():
		fields["total"] = "total must not be negative"
	case subtotal.IsNegative():
		fields["subtotal"] = "subtotal must not be negative"
	case discount.IsNegative():
		fields["discount"] = "discount must not be negative"
	case !subtotal.Sub(discount).Equal(total):
		fields["total"] = fmt.Sprintf("total must equal subtotal - discount (%s)", subtotal.Sub(discount).StringFixed(2))
	}
	if len(req.Items) > 0 {
		sum := decimal.Zero
		for _, it := range req.Items {
			if it.UnitPrice.IsNegative() {
				fields["items"] = "unitPrice must not be negative"
			}
			if (it.PeriodYear == nil) != (it.PeriodMonth == nil) {
				fields["items"] = "periodYear and periodMonth go together"
			}
			sum = sum.Add(it.LineTotal())
		}
		if !sum.Equal(subtotal) {
			fields["items"] = fmt.Sprintf("line items add up to %s, subtotal is %s", sum.StringFixed(2), subtotal.StringFixed(2))
		}
	}

	issue := s.clock.Today()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issue = *req.IssueDate
	}
	due := issue.AddDays(defaultDueDays)
	if req.DueDate != nil && !req.DueDate.IsZero() {
		due = *req.DueDate
	}
	if due.Before(issue.Time) {
		fields["dueDate"] = "dueDate must not be before issueDate"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("validation failed", fields)
	}

	number := s.numbers.Next()
	if req.InvoiceNumber != nil && strings.TrimSpace(*req.InvoiceNumber) != "" {
		number = strings.TrimSpace(*req.InvoiceNumber)
	}

	return &model.InvoiceModel{
		InvoiceParentID:  req.ParentID,
		InvoiceStudentID: req.StudentID,
		InvoiceNumber:    number,
		InvoiceIssueDate: issue,
		InvoiceDueDate:   due,
		InvoiceSubtotal:  subtotal,
		InvoiceDiscount:  discount,
		InvoiceTotal:     total,
		InvoiceStatus:    model.InvoiceStatusPending,
		InvoiceNotes:     req.Notes,
	}, nil
}

type placement struct {
	GradeID int64 `gorm:"column:grade_id"`
	LevelID int64 `gorm:"column:level_id"`
}

func studentPlacement(ctx context.Context, tx *databases.Gateway, studentID int64) (placement, error) {
	var pl placement
	found, err := tx.FetchOne(ctx, &pl, `
SELECT s.student_grade_id AS grade_id, g.grade_level_id AS level_id
FROM students s
JOIN grades g ON g.grade_id = s.student_grade_id
WHERE s.student_id = ?`, studentID)
	if err != nil {
		return pl, pkgerrors.Wrap(err, "student placement")
	}
	if !found {
		return pl, apperr.ValidationFields("validation failed", map[string]string{"studentId": "student not found"})
	}
	return pl, nil
}

func checkStudentOfParent(ctx context.Context, tx *databases.Gateway, studentID, parentID int64) error {
	var owner int64
	found, err := tx.FetchOne(ctx, &owner, `SELECT student_parent_id FROM students WHERE student_id = ?`, studentID)
	if err != nil {
		return pkgerrors.Wrap(err, "check student")
	}
	if !found {
		return apperr.ValidationFields("validation failed", map[string]string{"studentId": "student not found"})
	}
	if owner != parentID {
		return apperr.ValidationFields("validation failed", map[string]string{"parentId": "student does not belong to this parent"})
	}
	return nil
}

/* =======================================================================
   Status
======================================================================= */

// LockInvoice reads the invoice row under FOR UPDATE (Postgres). tx must be a transaction scope.
func LockInvoice(ctx context.Context, tx *databases.Gateway, id int64) (*model.InvoiceModel, error) {
	var m model.InvoiceModel
	if err := tx.ForUpdate(ctx).Where("invoice_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("invoice not found")
		}
		return nil, pkgerrors.Wrap(err, "lock invoice")
	}
	return &m, nil
}

// PaidSum returns the cumulative amount paid against the invoice.
func PaidSum(ctx context.Context, gw *databases.Gateway, invoiceID int64) (decimal.Decimal, error) {
	var row struct{ Paid decimal.Decimal }
	if _, err := gw.FetchOne(ctx, &row,
		`SELECT COALESCE(SUM(payment_amount), 0) AS paid FROM payments WHERE payment_invoice_id = ?`, invoiceID); err != nil {
		return decimal.Zero, pkgerrors.Wrap(err, "sum payments")
	}
	return row.Paid, nil
}

// SetStatusTx moves the invoice through pending -> paid|cancelled inside tx.
// It reports whether the stored status changed. Leaving paid or cancelled is
// rejected with model.ErrInvalidTransition.
func (s *InvoiceService) SetStatusTx(ctx context.Context, tx *databases.Gateway, id int64, to model.InvoiceStatus) (bool, error) {
	if !to.Valid() {
		return false, apperr.ValidationFields("validation failed", map[string]string{"status": "status must be one of pending paid cancelled"})
	}
	inv, err := LockInvoice(ctx, tx, id)
	if err != nil {
		return false, err
	}
	from := inv.InvoiceStatus
	if !from.CanTransition(to) {
		s.log.Warn("invoice status transition rejected",
			zap.Int64("invoice_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, &apperr.Error{
			Kind:    apperr.KindConflict,
			Message: fmt.Sprintf("invoice is %s and cannot become %s", from, to),
			Err:     model.ErrInvalidTransition,
		}
	}
	if from == to {
		return false, nil
	}
	if _, err := tx.Exec(ctx,
		`UPDATE invoices SET invoice_status = ?, invoice_updated_at = ? WHERE invoice_id = ?`,
		to, time.Now(), id); err != nil {
		return false, pkgerrors.Wrap(err, "update invoice status")
	}
	s.log.Info("invoice status changed",
		zap.Int64("invoice_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return true, nil
}

// SetStatus runs SetStatusTx in its own transaction and sends the receipt when
// the invoice became paid.
func (s *InvoiceService) SetStatus(ctx context.Context, id int64, to model.InvoiceStatus) error {
	var changed bool
	err := s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		var err error
		changed, err = s.SetStatusTx(ctx, tx, id, to)
		return err
	})
	if err != nil {
		return err
	}
	if changed && to == model.InvoiceStatusPaid {
		s.NotifyPaid(ctx, id)
	}
	return nil
}

/* =======================================================================
   Reads
======================================================================= */

const invoiceSelect = `
SELECT i.invoice_id, i.invoice_number,
       i.invoice_parent_id AS parent_id, COALESCE(p.parent_full_name, '') AS parent_name,
       i.invoice_student_id AS student_id, COALESCE(st.student_full_name, '') AS student_name,
       i.invoice_issue_date AS issue_date, i.invoice_due_date AS due_date,
       i.invoice_subtotal AS subtotal, i.invoice_discount AS discount, i.invoice_total AS total,
       COALESCE(pay.paid, 0) AS paid_amount,
       i.invoice_status AS status, i.invoice_notes AS notes, i.invoice_created_at AS created_at
FROM invoices i
LEFT JOIN parents p   ON p.parent_id = i.invoice_parent_id
LEFT JOIN students st ON st.student_id = i.invoice_student_id
LEFT JOIN (
  SELECT payment_invoice_id, SUM(payment_amount) AS paid
  FROM payments GROUP BY payment_invoice_id
) pay ON pay.payment_invoice_id = i.invoice_id`

const invoiceOrder = ` ORDER BY i.invoice_issue_date DESC, i.invoice_id DESC`

// Get returns the invoice with line items, payments and the running balance.
func (s *InvoiceService) Get(ctx context.Context, id int64) (*dto.InvoiceDetail, error) {
	var row dto.InvoiceRow
	found, err := s.gw.FetchOne(ctx, &row, invoiceSelect+` WHERE i.invoice_id = ?`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "get invoice")
	}
	if !found {
		return nil, apperr.NotFound("invoice not found")
	}

	items := []dto.ItemLine{}
	if err := s.gw.FetchMany(ctx, &items, `
SELECT it.invoice_item_id AS item_id, it.invoice_item_concept_id AS concept_id,
       c.payment_concept_name AS concept_name,
       it.invoice_item_description AS description, it.invoice_item_quantity AS quantity,
       it.invoice_item_unit_price AS unit_price, it.invoice_item_total AS total,
       it.invoice_item_period_year AS period_year, it.invoice_item_period_month AS period_month
FROM invoice_items it
LEFT JOIN payment_concepts c ON c.payment_concept_id = it.invoice_item_concept_id
WHERE it.invoice_item_invoice_id = ?
ORDER BY it.invoice_item_id`, id); err != nil {
		return nil, pkgerrors.Wrap(err, "get invoice items")
	}

	payments := []dto.PaymentLine{}
	if err := s.gw.FetchMany(ctx, &payments, `
SELECT payment_id, payment_date AS date, payment_amount AS amount, payment_method AS method,
       payment_reference AS reference, payment_notes AS notes
FROM payments
WHERE payment_invoice_id = ?
ORDER BY payment_date, payment_id`, id); err != nil {
		return nil, pkgerrors.Wrap(err, "get invoice payments")
	}

	return &dto.InvoiceDetail{
		InvoiceRow: row,
		Balance:    row.Total.Sub(row.PaidAmount),
		Items:      items,
		Payments:   payments,
	}, nil
}

// ListAll returns a page of invoices, newest first, and the total count.
func (s *InvoiceService) ListAll(ctx context.Context, f dto.ListFilter) ([]dto.InvoiceRow, int64, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.Status != nil {
		where += ` AND i.invoice_status = ?`
		args = append(args, *f.Status)
	}

	var total int64
	if _, err := s.gw.FetchOne(ctx, &total, `SELECT COUNT(*) FROM invoices i`+where, args...); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count invoices")
	}

	q := invoiceSelect + where + invoiceOrder
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	rows := []dto.InvoiceRow{}
	if err := s.gw.FetchMany(ctx, &rows, q, args...); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list invoices")
	}
	return rows, total, nil
}

func (s *InvoiceService) ListByParent(ctx context.Context, parentID int64) ([]dto.InvoiceRow, error) {
	rows := []dto.InvoiceRow{}
	if err := s.gw.FetchMany(ctx, &rows, invoiceSelect+` WHERE i.invoice_parent_id = ?`+invoiceOrder, parentID); err != nil {
		return nil, pkgerrors.Wrap(err, "list parent invoices")
	}
	return rows, nil
}

// OwnedBy reports whether the invoice belongs to the parent.
func (s *InvoiceService) OwnedBy(ctx context.Context, invoiceID, parentID int64) (bool, error) {
	var n int64
	if _, err := s.gw.FetchOne(ctx, &n,
		`SELECT COUNT(*) FROM invoices WHERE invoice_id = ? AND invoice_parent_id = ?`, invoiceID, parentID); err != nil {
		return false, pkgerrors.Wrap(err, "check invoice owner")
	}
	return n > 0, nil
}
