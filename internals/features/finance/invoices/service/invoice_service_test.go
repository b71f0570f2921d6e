package service

import (
	"context"
	"errors"
	"net/mail"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/databases/dbtest"
	conceptModel "schoolportal_backend/internals/features/finance/concepts/model"
	"schoolportal_backend/internals/features/finance/invoices/dto"
	"schoolportal_backend/internals/features/finance/invoices/model"
	directoryModel "schoolportal_backend/internals/features/school/directory/model"
	"schoolportal_backend/internals/helpers/apperr"
	"schoolportal_backend/internals/helpers/dbtime"
	"schoolportal_backend/internals/helpers/mailer"
)

var testToday = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	gw        *databases.Gateway
	svc       *InvoiceService
	levelID   int64
	gradeID   int64
	parentID  int64
	studentID int64
}

func newFixture(t *testing.T, sender mailer.Sender) *fixture {
	t.Helper()
	ctx := context.Background()
	gw := dbtest.Gateway(t)
	db := gw.DB(ctx)

	email := "ana@example.com"
	level := directoryModel.LevelModel{LevelName: "Primaria"}
	require.NoError(t, db.Create(&level).Error)
	grade := directoryModel.GradeModel{GradeLevelID: level.LevelID, GradeName: "3ro"}
	require.NoError(t, db.Create(&grade).Error)
	parent := directoryModel.ParentModel{ParentFullName: "Ana Torres", ParentEmail: &email}
	require.NoError(t, db.Create(&parent).Error)
	student := directoryModel.StudentModel{StudentParentID: parent.ParentID, StudentGradeID: grade.GradeID, StudentFullName: "Luis Torres", StudentIsActive: true}
	require.NoError(t, db.Create(&student).Error)

	return &fixture{
		gw:        gw,
		svc:       NewInvoiceService(gw, dbtime.Fixed(testToday), sender, zap.NewNop()),
		levelID:   level.LevelID,
		gradeID:   grade.GradeID,
		parentID:  parent.ParentID,
		studentID: student.StudentID,
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(v int) *int { return &v }

func TestCreateInvoiceDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	id, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("250")})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Regexp(t, `^FAC-2025-\d+$`, got.InvoiceNumber)
	assert.Equal(t, "2025-03-10", got.IssueDate.String())
	assert.Equal(t, "2025-04-09", got.DueDate.String())
	assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, got.Discount.IsZero())
	assert.True(t, got.Total.Equal(decimal.NewFromInt(250)))
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, model.InvoiceStatusPending, got.Status)
	assert.Equal(t, "Luis Torres", got.StudentName)
	assert.Equal(t, "Ana Torres", got.ParentName)
	assert.Empty(t, got.Items)
	assert.Empty(t, got.Payments)
}

func TestCreateInvoiceNumbersAreUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("10")})
		require.NoError(t, err)
		got, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, seen[got.InvoiceNumber], got.InvoiceNumber)
		seen[got.InvoiceNumber] = true
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	cases := map[string]dto.CreateInvoiceRequest{
		"missing total":         {ParentID: f.parentID, StudentID: f.studentID},
		"missing parent":        {StudentID: f.studentID, Total: dec("1")},
		"total mismatch":        {ParentID: f.parentID, StudentID: f.studentID, Total: dec("90"), Subtotal: dec("100"), Discount: dec("5")},
		"negative discount":     {ParentID: f.parentID, StudentID: f.studentID, Total: dec("105"), Subtotal: dec("100"), Discount: dec("-5")},
		"student not of parent": {ParentID: f.parentID + 1, StudentID: f.studentID, Total: dec("1")},
		"unknown student":       {ParentID: f.parentID, StudentID: 999, Total: dec("1")},
		"items mismatch": {ParentID: f.parentID, StudentID: f.studentID, Total: dec("100"),
			Items: []dto.CreateInvoiceItemRequest{{Description: "Pensión", Quantity: 1, UnitPrice: decimal.NewFromInt(90)}}},
		"period month without year": {ParentID: f.parentID, StudentID: f.studentID, Total: dec("90"),
			Items: []dto.CreateInvoiceItemRequest{{Description: "Pensión", Quantity: 1, UnitPrice: decimal.NewFromInt(90), PeriodMonth: intp(3)}}},
		"period year without month": {ParentID: f.parentID, StudentID: f.studentID, Total: dec("90"),
			Items: []dto.CreateInvoiceItemRequest{{Description: "Pensión", Quantity: 1, UnitPrice: decimal.NewFromInt(90), PeriodYear: intp(2025)}}},
		"due before issue": {ParentID: f.parentID, StudentID: f.studentID, Total: dec("1"),
			DueDate: &dbtime.Date{Time: testToday.AddDate(0, 0, -1)}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, req)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	var n int64
	_, err := f.gw.FetchOne(ctx, &n, `SELECT COUNT(*) FROM invoices`)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateInvoiceWithDiscountAndItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	year, month := 2025, 3
	id, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{
		ParentID: f.parentID, StudentID: f.studentID,
		Subtotal: dec("300"), Discount: dec("50"), Total: dec("250"),
		Items: []dto.CreateInvoiceItemRequest{
			{Description: "Pensión marzo", Quantity: 1, UnitPrice: decimal.NewFromInt(200), PeriodYear: &year, PeriodMonth: &month},
			{Description: "Cuaderno", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Pensión marzo", got.Items[0].Description)
	require.NotNil(t, got.Items[0].PeriodMonth)
	assert.Equal(t, 3, *got.Items[0].PeriodMonth)
	assert.True(t, got.Items[1].Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, got.Items[1].Quantity)
}

func TestCreateInvoiceDuplicateNumberConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	num := "FAC-2025-0001"
	_, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("1"), InvoiceNumber: &num})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("1"), InvoiceNumber: &num})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
}

func TestGenerateEnrollmentInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	db := f.gw.DB(ctx)

	req := dto.EnrollmentInvoiceRequest{StudentID: f.studentID, ParentID: f.parentID, LevelID: f.levelID}
	_, err := f.svc.GenerateEnrollment(ctx, req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	other := f.levelID + 10
	otherGrade := f.gradeID + 10
	for _, c := range []conceptModel.PaymentConceptModel{
		{PaymentConceptName: "Matrícula", PaymentConceptAmount: decimal.NewFromInt(200), PaymentConceptType: conceptModel.ConceptTypeEnrollment, PaymentConceptIsActive: true},
		{PaymentConceptName: "Seguro", PaymentConceptAmount: decimal.NewFromInt(50), PaymentConceptType: conceptModel.ConceptTypeEnrollment, PaymentConceptLevelID: &f.levelID, PaymentConceptIsActive: true},
		{PaymentConceptName: "Matrícula secundaria", PaymentConceptAmount: decimal.NewFromInt(999), PaymentConceptType: conceptModel.ConceptTypeEnrollment, PaymentConceptLevelID: &other, PaymentConceptIsActive: true},
		{PaymentConceptName: "Pensión", PaymentConceptAmount: decimal.NewFromInt(350), PaymentConceptType: conceptModel.ConceptTypeMonthly, PaymentConceptIsActive: true},
		{PaymentConceptName: "Cuota 3ro", PaymentConceptAmount: decimal.NewFromInt(30), PaymentConceptType: conceptModel.ConceptTypeEnrollment, PaymentConceptGradeID: &f.gradeID, PaymentConceptIsActive: true},
		{PaymentConceptName: "Cuota 5to", PaymentConceptAmount: decimal.NewFromInt(70), PaymentConceptType: conceptModel.ConceptTypeEnrollment, PaymentConceptGradeID: &otherGrade, PaymentConceptIsActive: true},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error)
	}

	// levelId must match the student's grade
	_, err = f.svc.GenerateEnrollment(ctx, dto.EnrollmentInvoiceRequest{StudentID: f.studentID, ParentID: f.parentID, LevelID: other})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "levelId")

	id, err := f.svc.GenerateEnrollment(ctx, req)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(280)), got.Total.String())
	require.Len(t, got.Items, 3)
	assert.Equal(t, "Matrícula", got.Items[0].Description)
	assert.Equal(t, "Seguro", got.Items[1].Description)
	assert.Equal(t, "Cuota 3ro", got.Items[2].Description)
	require.NotNil(t, got.Items[0].ConceptName)
	assert.Equal(t, "Matrícula", *got.Items[0].ConceptName)
}

func TestSetStatusStateMachine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	id, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("10")})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetStatus(ctx, id, model.InvoiceStatusPending))
	require.NoError(t, f.svc.SetStatus(ctx, id, model.InvoiceStatusCancelled))

	err = f.svc.SetStatus(ctx, id, model.InvoiceStatusPaid)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	err = f.svc.SetStatus(ctx, 999, model.InvoiceStatusPaid)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusCancelled, got.Status)
}

func TestListInvoices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("10")})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, f.svc.SetStatus(ctx, ids[0], model.InvoiceStatusCancelled))

	rows, total, err := f.svc.ListAll(ctx, dto.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 3)
	assert.Equal(t, ids[2], rows[0].InvoiceID)
	assert.Equal(t, "Ana Torres", rows[0].ParentName)

	pending := model.InvoiceStatusPending
	rows, total, err = f.svc.ListAll(ctx, dto.ListFilter{Status: &pending, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, ids[1], rows[0].InvoiceID)

	byParent, err := f.svc.ListByParent(ctx, f.parentID)
	require.NoError(t, err)
	assert.Len(t, byParent, 3)

	none, err := f.svc.ListByParent(ctx, f.parentID+1)
	require.NoError(t, err)
	assert.Empty(t, none)

	owned, err := f.svc.OwnedBy(ctx, ids[0], f.parentID)
	require.NoError(t, err)
	assert.True(t, owned)
}

type chanSender struct{ ch chan mailer.Message }

func (s chanSender) Send(_ context.Context, m mailer.Message) error {
	s.ch <- m
	return nil
}

func TestPaidStatusSendsReceipt(t *testing.T) {
	ctx := context.Background()
	sender := chanSender{ch: make(chan mailer.Message, 1)}
	f := newFixture(t, sender)

	id, err := f.svc.Create(ctx, dto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.studentID, Total: dec("250")})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetStatus(ctx, id, model.InvoiceStatusPaid))

	select {
	case m := <-sender.ch:
		assert.Equal(t, mail.Address{Name: "Ana Torres", Address: "ana@example.com"}, m.To)
		assert.Contains(t, m.Text, "250.00")
	case <-time.After(2 * time.Second):
		t.Fatal("receipt not sent")
	}
}
