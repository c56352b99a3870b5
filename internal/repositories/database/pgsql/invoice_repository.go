package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_pipeline/internal/models"
	"github.com/SscSPs/invoice_pipeline/internal/utils/mapping"
	"github.com/SscSPs/invoice_pipeline/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `invoice_id, invoice_number, vendor, amount, description, invoice_date, status, task_id,
	ledger_entry_id, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice records.
func newPgxInvoiceRepository(pool *pgxpool.Pool) *PgxInvoiceRepository {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.InvoiceNumber,
		&m.Vendor,
		&m.Amount,
		&m.Description,
		&m.InvoiceDate,
		&m.Status,
		&m.TaskID,
		&m.LedgerEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SaveInvoice inserts a record; the unique index on invoice_number turns a duplicate into apperrors.ErrDuplicate.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.InvoiceRecord) error {
	m := mapping.ToModelInvoice(invoice)

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.InvoiceID,
		m.InvoiceNumber,
		m.Vendor,
		m.Amount,
		m.Description,
		m.InvoiceDate,
		m.Status,
		m.TaskID,
		m.LedgerEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return duplicateOr(err,
			fmt.Sprintf("invoice number %s already exists", m.InvoiceNumber),
			fmt.Sprintf("failed to save invoice %s", m.InvoiceID))
	}
	return nil
}

func (r *PgxInvoiceRepository) FindInvoiceByNumber(ctx context.Context, invoiceNumber string) (*domain.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_number = $1;`
	return r.findOne(ctx, query, invoiceNumber)
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	return r.findOne(ctx, query, invoiceID)
}

func (r *PgxInvoiceRepository) findOne(ctx context.Context, query string, arg string) (*domain.InvoiceRecord, error) {
	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", arg, err)
	}
	d := mapping.ToDomainInvoice(m)
	return &d, nil
}

// ListInvoices pages newest first using a (created_at, invoice_id) keyset.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, limit int, nextToken *string) ([]domain.InvoiceRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []any{}
	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` WHERE (created_at, invoice_id) < ($1, $2)`
		args = append(args, afterTime, afterID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, invoice_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	modelInvoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan invoices: %w", err)
	}

	invoices := mapping.ToDomainInvoiceSlice(modelInvoices)
	return cutPage(invoices, limit, func(rec domain.InvoiceRecord) (time.Time, string) {
		return rec.CreatedAt, rec.InvoiceID
	})
}

func (r *PgxInvoiceRepository) UpdateInvoiceDetails(ctx context.Context, invoice domain.InvoiceRecord) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE invoices
		SET invoice_number = $2, vendor = $3, amount = $4, description = $5, invoice_date = $6,
			last_updated_at = $7, last_updated_by = $8, version = version + 1
		WHERE invoice_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.InvoiceID,
		m.InvoiceNumber,
		m.Vendor,
		m.Amount,
		m.Description,
		m.InvoiceDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return duplicateOr(err,
			fmt.Sprintf("invoice number %s already exists", m.InvoiceNumber),
			fmt.Sprintf("failed to update invoice %s", m.InvoiceID))
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, ledgerEntryID *string, updatedBy string) error {
	query := `
		UPDATE invoices
		SET status = $2, ledger_entry_id = COALESCE($3, ledger_entry_id),
			last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE invoice_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, invoiceID, string(status), ledgerEntryID, time.Now().UTC(), updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of invoice %s: %w", invoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxInvoiceRepository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM invoices WHERE invoice_id = $1;`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", invoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// cutPage trims the extra row fetched beyond limit and builds the next token from the last kept row.
func cutPage[T any](records []T, limit int, key func(T) (time.Time, string)) ([]T, *string, error) {
	if len(records) <= limit {
		return records, nil, nil
	}
	records = records[:limit]
	at, id := key(records[len(records)-1])
	token := pagination.EncodeTimeIDToken(at, id)
	return records, &token, nil
}
