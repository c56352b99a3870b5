package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_pipeline/internal/utils/pagination"
)

// InvoiceRepository enforces invoice number uniqueness the way the invoices table does.
type InvoiceRepository struct {
	store *Store[string, domain.InvoiceRecord]
}

// NewInvoiceRepository creates an empty invoice store.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		store: NewStore[string, domain.InvoiceRecord](func(r *domain.InvoiceRecord) string { return r.InvoiceID }),
	}
}

var _ portsrepo.InvoiceRepositoryFacade = (*InvoiceRepository)(nil)

// numberTaken must be called with the lock held.
func (r *InvoiceRepository) numberTaken(invoiceNumber, exceptID string) (bool, error) {
	records, err := r.store.all()
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.InvoiceNumber == invoiceNumber && rec.InvoiceID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InvoiceRepository) SaveInvoice(_ context.Context, invoice domain.InvoiceRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists, _ := r.store.load(invoice.InvoiceID); exists {
		return fmt.Errorf("%w: invoice record %s already exists", apperrors.ErrDuplicate, invoice.InvoiceID)
	}
	taken, err := r.numberTaken(invoice.InvoiceNumber, "")
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: invoice number %s already exists", apperrors.ErrDuplicate, invoice.InvoiceNumber)
	}
	invoice.Version = 1
	return r.store.save(&invoice)
}

func (r *InvoiceRepository) FindInvoiceByNumber(_ context.Context, invoiceNumber string) (*domain.InvoiceRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records, err := r.store.all()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].InvoiceNumber == invoiceNumber {
			return &records[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *InvoiceRepository) FindInvoiceByID(_ context.Context, invoiceID string) (*domain.InvoiceRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok, err := r.store.load(invoiceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return rec, nil
}

func (r *InvoiceRepository) ListInvoices(_ context.Context, limit int, nextToken *string) ([]domain.InvoiceRecord, *string, error) {
	r.store.mu.RLock()
	records, err := r.store.all()
	r.store.mu.RUnlock()
	if err != nil {
		return nil, nil, err
	}

	// newest first, invoice id breaks ties
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].InvoiceID > records[j].InvoiceID
	})

	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start := len(records)
		for i, rec := range records {
			if rec.CreatedAt.Before(afterTime) || (rec.CreatedAt.Equal(afterTime) && rec.InvoiceID < afterID) {
				start = i
				break
			}
		}
		records = records[start:]
	}

	return page(records, limit, func(rec domain.InvoiceRecord) (time.Time, string) { return rec.CreatedAt, rec.InvoiceID })
}

func (r *InvoiceRepository) UpdateInvoiceDetails(_ context.Context, invoice domain.InvoiceRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok, err := r.store.load(invoice.InvoiceID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	taken, err := r.numberTaken(invoice.InvoiceNumber, invoice.InvoiceID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: invoice number %s already exists", apperrors.ErrDuplicate, invoice.InvoiceNumber)
	}

	current.InvoiceNumber = invoice.InvoiceNumber
	current.Vendor = invoice.Vendor
	current.Amount = invoice.Amount
	current.Description = invoice.Description
	current.InvoiceDate = invoice.InvoiceDate
	current.LastUpdatedAt = invoice.LastUpdatedAt
	current.LastUpdatedBy = invoice.LastUpdatedBy
	current.Version++
	return r.store.save(current)
}

func (r *InvoiceRepository) UpdateInvoiceStatus(_ context.Context, invoiceID string, status domain.InvoiceStatus, ledgerEntryID *string, updatedBy string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok, err := r.store.load(invoiceID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	current.Status = status
	if ledgerEntryID != nil {
		current.LedgerEntryID = ledgerEntryID
	}
	current.LastUpdatedAt = time.Now().UTC()
	current.LastUpdatedBy = updatedBy
	current.Version++
	return r.store.save(current)
}

func (r *InvoiceRepository) DeleteInvoice(_ context.Context, invoiceID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.records[invoiceID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.records, invoiceID)
	return nil
}

// page cuts records to limit and builds the token pointing past the last returned item.
func page[T any](records []T, limit int, key func(T) (time.Time, string)) ([]T, *string, error) {
	if limit <= 0 || len(records) <= limit {
		return records, nil, nil
	}
	records = records[:limit]
	at, id := key(records[len(records)-1])
	token := pagination.EncodeTimeIDToken(at, id)
	return records, &token, nil
}
