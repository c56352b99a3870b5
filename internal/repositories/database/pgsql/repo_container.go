package pgsql

import (
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoiceRepo: newPgxInvoiceRepository(dbPool),
		TaskRepo:    newPgxTaskRepository(dbPool),
		ReviewRepo:  newPgxReviewRepository(dbPool),
	}
}
