// Package export renders the ledger as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

const sheetName = "Kasbon"

var headers = []string{"Nama", "Tanggal", "Nominal", "Status", "Deskripsi", "Foto"}

// ExcelWriter builds xlsx exports of the debt collection.
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates an Excel writer.
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// Write renders one row per entry plus a totals row for open debt and
// streams the workbook to w.
func (e *ExcelWriter) Write(w io.Writer, debts []entity.Debt) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, cell, header)
	}

	row := 2
	for i := range debts {
		d := &debts[i]
		e.setCell(f, fmt.Sprintf("A%d", row), d.Name)
		e.setCell(f, fmt.Sprintf("B%d", row), d.Date.Format(entity.DateLayout))
		e.setCell(f, fmt.Sprintf("C%d", row), d.Amount)
		e.setCell(f, fmt.Sprintf("D%d", row), string(d.Status))
		e.setCell(f, fmt.Sprintf("E%d", row), d.Description)
		e.setCell(f, fmt.Sprintf("F%d", row), len(d.Photos))
		row++
	}

	row++
	e.setCell(f, fmt.Sprintf("A%d", row), "Total belum lunas")
	e.setCell(f, fmt.Sprintf("C%d", row), entity.OutstandingTotal(debts))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Exported ledger workbook", zap.Int("entries", len(debts)))
	return nil
}

func (e *ExcelWriter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell", zap.String("cell", cell), zap.Error(err))
	}
}
