package memory

import portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"

// NewRepositoryProvider builds a provider whose repositories live in process memory.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoiceRepo: NewInvoiceRepository(),
		TaskRepo:    NewTaskRepository(),
		ReviewRepo:  NewReviewRepository(),
	}
}
