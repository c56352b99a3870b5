package services

import (
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/platform/config"
	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
)

// Adapters groups the outbound collaborators built by the caller from configuration.
type Adapters struct {
	Extractor portssvc.Extractor
	Ledger    portssvc.LedgerClient
	Storage   portssvc.ObjectStorage
	Exporter  portssvc.WorkbookExporter
	Locker    portssvc.ClaimLocker
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, adapters Adapters, m *metrics.PipelineMetrics) (*portssvc.ServiceContainer, error) {
	policy, err := domain.NewApprovalPolicy(domain.AutoApproveUnderThreshold, cfg.AutoApprovalThreshold)
	if err != nil {
		return nil, fmt.Errorf("approval policy: %w", err)
	}

	gate := NewReviewGate(repos.ReviewRepo, m)

	opts := []PipelineOption{WithPipelineMetrics(m)}
	if adapters.Exporter != nil {
		opts = append(opts, WithWorkbookExporter(adapters.Exporter))
	}
	if adapters.Locker != nil {
		opts = append(opts, WithClaimLocker(adapters.Locker))
	}

	pipeline, err := NewPipelineService(PipelineDeps{
		Extractor: adapters.Extractor,
		Detector:  NewDuplicateDetector(repos.InvoiceRepo),
		Policy:    policy,
		Gate:      gate,
		Builder: NewJournalBuilder(JournalAccounts{
			Expense:      cfg.ExpenseAccount,
			Payable:      cfg.PayableAccount,
			CurrencyCode: cfg.CurrencyCode,
		}),
		Ledger:   adapters.Ledger,
		Storage:  adapters.Storage,
		Invoices: repos.InvoiceRepo,
		Tasks:    repos.TaskRepo,
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &portssvc.ServiceContainer{
		Pipeline: pipeline,
		Reviews:  gate,
	}, nil
}
