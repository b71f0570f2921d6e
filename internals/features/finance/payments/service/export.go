package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"schoolportal_backend/internals/features/finance/payments/dto"
)

const pendingSheet = "Pending"

var pendingHeaders = []string{"Level", "Grade", "Student", "Parent", "Email", "Concept", "Amount"}

// ExportPending renders the pending report as an XLSX workbook.
func (s *PaymentService) ExportPending(ctx context.Context, f dto.PendingFilter) ([]byte, error) {
	rows, err := s.ListPending(ctx, f)
	if err != nil {
		return nil, err
	}
	return PendingWorkbook(f, rows)
}

func PendingWorkbook(f dto.PendingFilter, rows []dto.PendingRow) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	idx, err := x.NewSheet(pendingSheet)
	if err != nil {
		return nil, errors.Wrap(err, "new sheet")
	}
	x.SetActiveSheet(idx)
	_ = x.DeleteSheet("Sheet1")

	_ = x.SetCellValue(pendingSheet, "A1", fmt.Sprintf("Pending payments %04d-%02d", f.Year, f.Month))
	for i, h := range pendingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = x.SetCellValue(pendingSheet, cell, h)
	}

	for i, r := range rows {
		row := i + 4
		email := ""
		if r.ParentEmail != nil {
			email = *r.ParentEmail
		}
		amount, _ := r.Amount.Float64()
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("A%d", row), r.LevelName)
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("B%d", row), r.GradeName)
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("C%d", row), r.StudentName)
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("D%d", row), r.ParentName)
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("E%d", row), email)
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("F%d", row), r.ConceptName)
		_ = x.SetCellValue(pendingSheet, fmt.Sprintf("G%d", row), amount)
	}
	_ = x.SetColWidth(pendingSheet, "A", "F", 22)

	var buf bytes.Buffer
	if err := x.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "write xlsx")
	}
	return buf.Bytes(), nil
}
