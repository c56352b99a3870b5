package workbook_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/adapters/storage"
	"github.com/SscSPs/invoice_pipeline/internal/adapters/workbook"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleEntry() domain.JournalEntry {
	amount := decimal.RequireFromString("1500.50")
	return domain.JournalEntry{
		EntryDate:     time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		InvoiceNumber: "INV/2025/7",
		Vendor:        "Acme",
		Description:   "laptops",
		CurrencyCode:  "USD",
		Lines: []domain.JournalLine{
			{AccountName: "Expenses", Debit: amount, Credit: decimal.Zero},
			{AccountName: "Accounts Payable", Debit: decimal.Zero, Credit: amount},
		},
	}
}

func TestExport_WritesSummaryAndLines(t *testing.T) {
	store := storage.NewMemoryObjectStorage()
	exporter, err := workbook.NewExcelWorkbookExporter(store)
	require.NoError(t, err)

	ref, err := exporter.Export(context.Background(), "task-1", sampleEntry())
	require.NoError(t, err)
	assert.Equal(t, "journal-entries/INV_2025_7/task-1.xlsx", ref.Key)
	assert.Equal(t, workbook.ContentType, ref.ContentType)

	data, err := store.Get(context.Background(), ref.Key)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{workbook.SummarySheet, workbook.LinesSheet}, f.GetSheetList())

	get := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "2025-03-14", get(workbook.SummarySheet, "B1"))
	assert.Equal(t, "INV/2025/7", get(workbook.SummarySheet, "B2"))
	assert.Equal(t, "Acme", get(workbook.SummarySheet, "B3"))
	assert.Equal(t, "TRUE", get(workbook.SummarySheet, "B8"))

	rows, err := f.GetRows(workbook.LinesSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Account", "Debit", "Credit"}, rows[0])
	assert.Equal(t, "Expenses", rows[1][0])
	assert.Equal(t, "1500.5", rows[1][1])
	assert.Equal(t, "Accounts Payable", rows[2][0])
	assert.Equal(t, "1500.5", rows[2][2])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "1500.5", rows[3][1])
	assert.Equal(t, "1500.5", rows[3][2])
}

type failingStorage struct{}

func (failingStorage) Put(context.Context, string, []byte, string) (*domain.FileRef, error) {
	return nil, errors.New("bucket unavailable")
}

func (failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("bucket unavailable")
}

func TestExport_StorageFailure(t *testing.T) {
	exporter, err := workbook.NewExcelWorkbookExporter(failingStorage{})
	require.NoError(t, err)

	_, err = exporter.Export(context.Background(), "task-1", sampleEntry())
	assert.ErrorContains(t, err, "bucket unavailable")
}

func TestNewExcelWorkbookExporter_RequiresStorage(t *testing.T) {
	_, err := workbook.NewExcelWorkbookExporter(nil)
	assert.Error(t, err)
}
