// Package workbook renders journal entries as Excel workbooks.
package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/platform/logging"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	LinesSheet   = "Lines"

	// ContentType is the MIME type of .xlsx files.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExcelWorkbookExporter writes a Summary and a Lines sheet and uploads the file.
type ExcelWorkbookExporter struct {
	storage portssvc.ObjectStorage
}

func NewExcelWorkbookExporter(storage portssvc.ObjectStorage) (*ExcelWorkbookExporter, error) {
	if storage == nil {
		return nil, errors.New("workbook exporter: object storage is required")
	}
	return &ExcelWorkbookExporter{storage: storage}, nil
}

var _ portssvc.WorkbookExporter = (*ExcelWorkbookExporter)(nil)

// Key is the object key of the workbook exported for a task.
func Key(invoiceNumber, taskID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(invoiceNumber)
	return fmt.Sprintf("journal-entries/%s/%s.xlsx", safe, taskID)
}

func (e *ExcelWorkbookExporter) Export(ctx context.Context, taskID string, entry domain.JournalEntry) (*domain.FileRef, error) {
	data, err := Render(entry)
	if err != nil {
		return nil, err
	}

	key := Key(entry.InvoiceNumber, taskID)
	ref, err := e.storage.Put(ctx, key, data, ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload workbook: %w", err)
	}

	logging.FromContext(ctx).Info("Journal entry workbook exported",
		slog.String("task_id", taskID),
		slog.String("key", key),
		slog.Int64("size", ref.Size))
	return ref, nil
}

// Render builds the workbook bytes.
func Render(entry domain.JournalEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LinesSheet); err != nil {
		return nil, fmt.Errorf("create lines sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	debits, _ := entry.TotalDebits().Float64()
	credits, _ := entry.TotalCredits().Float64()

	summary := [][]any{
		{"Entry date", entry.EntryDate.Format("2006-01-02")},
		{"Invoice number", entry.InvoiceNumber},
		{"Vendor", entry.Vendor},
		{"Description", entry.Description},
		{"Currency", entry.CurrencyCode},
		{"Total debit", debits},
		{"Total credit", credits},
		{"Balanced", entry.IsBalanced()},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SummarySheet, "B6", "B7", money); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 18)
	_ = f.SetColWidth(SummarySheet, "B", "B", 40)

	if err := f.SetSheetRow(LinesSheet, "A1", &[]any{"Account", "Debit", "Credit"}); err != nil {
		return nil, err
	}
	for i, line := range entry.Lines {
		debit, _ := line.Debit.Float64()
		credit, _ := line.Credit.Float64()
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(LinesSheet, cell, &[]any{line.AccountName, debit, credit}); err != nil {
			return nil, err
		}
	}
	totalRow := len(entry.Lines) + 2
	if err := f.SetSheetRow(LinesSheet, fmt.Sprintf("A%d", totalRow), &[]any{"Total", debits, credits}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(LinesSheet, "A1", "C1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(LinesSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("A%d", totalRow), bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(LinesSheet, "B2", fmt.Sprintf("C%d", totalRow), money); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(LinesSheet, "A", "A", 28)
	_ = f.SetColWidth(LinesSheet, "B", "C", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
