package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
	"github.com/google/uuid"
)

// PipelineDeps are the collaborators the orchestrator cannot run without.
type PipelineDeps struct {
	Extractor portssvc.Extractor
	Detector  portssvc.DuplicateDetectorSvc
	Policy    *domain.ApprovalPolicy
	Gate      portssvc.ReviewGateSvc
	Builder   portssvc.JournalBuilderSvc
	Ledger    portssvc.LedgerClient
	Storage   portssvc.ObjectStorage
	Invoices  portsrepo.InvoiceRepositoryFacade
	Tasks     portsrepo.TaskRepositoryFacade
}

// PipelineOption configures optional collaborators of the pipeline service
type PipelineOption func(*pipelineService)

// WithWorkbookExporter enables the spreadsheet export after a successful posting.
func WithWorkbookExporter(exporter portssvc.WorkbookExporter) PipelineOption {
	return func(s *pipelineService) {
		s.exporter = exporter
	}
}

// WithClaimLocker serialises duplicate check and claim per invoice number.
func WithClaimLocker(locker portssvc.ClaimLocker) PipelineOption {
	return func(s *pipelineService) {
		s.locker = locker
	}
}

// WithPipelineMetrics records outcomes and posting latency.
func WithPipelineMetrics(m *metrics.PipelineMetrics) PipelineOption {
	return func(s *pipelineService) {
		s.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) PipelineOption {
	return func(s *pipelineService) {
		s.now = now
	}
}

// WithIDGenerator overrides the task and invoice record id generator.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(s *pipelineService) {
		s.newID = newID
	}
}

// pipelineService is the orchestrator. A task advances synchronously inside the calling request
// until it reaches a terminal state or the review gate; the checkpoint is written after every
// transition, so Resume and CancelReview only need the task id.
type pipelineService struct {
	BaseService
	extractor   portssvc.Extractor
	detector    portssvc.DuplicateDetectorSvc
	policy      *domain.ApprovalPolicy
	gate        portssvc.ReviewGateSvc
	builder     portssvc.JournalBuilderSvc
	ledger      portssvc.LedgerClient
	storage     portssvc.ObjectStorage
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	taskRepo    portsrepo.TaskRepositoryFacade

	exporter portssvc.WorkbookExporter
	locker   portssvc.ClaimLocker
	metrics  *metrics.PipelineMetrics
	now      func() time.Time
	newID    func() string
}

// NewPipelineService wires the orchestrator.
func NewPipelineService(deps PipelineDeps, opts ...PipelineOption) (portssvc.PipelineSvcFacade, error) {
	switch {
	case deps.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case deps.Detector == nil:
		return nil, errors.New("pipeline: duplicate detector is required")
	case deps.Policy == nil:
		return nil, errors.New("pipeline: approval policy is required")
	case deps.Gate == nil:
		return nil, errors.New("pipeline: review gate is required")
	case deps.Builder == nil:
		return nil, errors.New("pipeline: journal builder is required")
	case deps.Ledger == nil:
		return nil, errors.New("pipeline: ledger client is required")
	case deps.Storage == nil:
		return nil, errors.New("pipeline: object storage is required")
	case deps.Invoices == nil || deps.Tasks == nil:
		return nil, errors.New("pipeline: invoice and task repositories are required")
	}

	s := &pipelineService{
		extractor:   deps.Extractor,
		detector:    deps.Detector,
		policy:      deps.Policy,
		gate:        deps.Gate,
		builder:     deps.Builder,
		ledger:      deps.Ledger,
		storage:     deps.Storage,
		invoiceRepo: deps.Invoices,
		taskRepo:    deps.Tasks,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ portssvc.PipelineSvcFacade = (*pipelineService)(nil)

// SourceKey is the object storage key of an uploaded document.
func SourceKey(taskID, fileName string) string {
	return fmt.Sprintf("invoices/%s/%s", taskID, fileName)
}

func claimLockKey(invoiceNumber string) string {
	return "invoice-claim:" + invoiceNumber
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}

func (s *pipelineService) Submit(ctx context.Context, upload domain.Upload, submittedBy string) (*domain.PipelineTask, error) {
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: uploaded document is empty", apperrors.ErrValidation)
	}
	if submittedBy == "" {
		submittedBy = domain.SystemActor
	}

	fileName := sanitizeFileName(upload.FileName)
	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(upload.Data)
	}

	now := s.now().UTC()
	task := &domain.PipelineTask{
		TaskID: s.newID(),
		State:  domain.StateExtracting,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     submittedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: submittedBy,
		},
	}
	if err := s.taskRepo.SaveTask(ctx, task); err != nil {
		s.LogError(ctx, err, "Failed to create pipeline task")
		return nil, fmt.Errorf("create pipeline task: %w", err)
	}
	s.LogInfo(ctx, "Invoice submitted",
		slog.String("task_id", task.TaskID),
		slog.String("file_name", fileName),
		slog.String("content_type", contentType))

	ref, err := s.storage.Put(ctx, SourceKey(task.TaskID, fileName), upload.Data, contentType)
	if err != nil {
		task.Finish(domain.StateFailed, domain.OutcomeExtractionFailed,
			fmt.Sprintf("%s: could not store source document: %v", apperrors.ErrExtractionFailed.Error(), err))
		return s.finalize(ctx, task, submittedBy)
	}
	ref.FileName = fileName
	task.Source = *ref

	return s.advance(ctx, task, upload.Data, submittedBy)
}

func (s *pipelineService) Resume(ctx context.Context, taskID string, decision domain.ReviewDecision) (*domain.PipelineTask, error) {
	task, err := s.awaitingTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	actor := decision.Reviewer
	if actor == "" {
		actor = domain.SystemActor
	}

	reviewed, err := decision.Apply(*task.Candidate, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	task.Reviewed = &reviewed

	if !decision.Approved {
		reason := fmt.Sprintf("%s: %s", apperrors.ErrReviewRejected.Error(), actor)
		if decision.Comment != "" {
			reason += ": " + decision.Comment
		}
		task.Finish(domain.StateRejected, domain.OutcomeReviewRejected, reason)
	} else {
		task.State = domain.StatePosting
	}

	// The checkpoint commits the decision. A concurrent decision loses here on the task version,
	// and a failed write leaves both the task and its review request pending.
	if err := s.checkpoint(ctx, task, actor); err != nil {
		return nil, err
	}
	s.closeReview(ctx, task, s.gate.RecordDecision(ctx, taskID, decision))

	if !decision.Approved {
		return s.finalize(ctx, task, actor)
	}

	if outcome, reason := s.applyReviewedDetails(ctx, task, reviewed, actor); outcome != domain.OutcomeNone {
		task.Finish(terminalStateFor(outcome), outcome, reason)
		return s.finalize(ctx, task, actor)
	}

	s.LogInfo(ctx, "Review approved, resuming task",
		slog.String("task_id", task.TaskID),
		slog.String("invoice_number", reviewed.InvoiceNumber))
	return s.advance(ctx, task, nil, actor)
}

func (s *pipelineService) CancelReview(ctx context.Context, taskID string, reason string, cancelledBy string) (*domain.PipelineTask, error) {
	task, err := s.awaitingTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if cancelledBy == "" {
		cancelledBy = domain.SystemActor
	}

	task.Finish(domain.StateCancelled, domain.OutcomeReviewCancelled,
		fmt.Sprintf("%s by %s: %s", apperrors.ErrReviewCancelled.Error(), cancelledBy, reason))
	if err := s.checkpoint(ctx, task, cancelledBy); err != nil {
		return nil, err
	}
	s.closeReview(ctx, task, s.gate.RecordCancellation(ctx, taskID, cancelledBy, reason))
	return s.finalize(ctx, task, cancelledBy)
}

// closeReview logs a review request that could not be closed after its task moved on.
// The task is authoritative; a request left pending no longer accepts decisions.
func (s *pipelineService) closeReview(ctx context.Context, task *domain.PipelineTask, err error) {
	if err == nil {
		return
	}
	s.LogError(ctx, err, "Review request left open after the task moved on",
		slog.String("task_id", task.TaskID),
		slog.String("state", string(task.State)))
}

func (s *pipelineService) ReconcilePosting(ctx context.Context, taskID string, requestedBy string) (*domain.PipelineTask, error) {
	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.State != domain.StateFailed || task.Outcome != domain.OutcomePostingTransport ||
		task.Posting == nil || task.Posting.EntryID == "" {
		return nil, fmt.Errorf("%w: task %s has no ledger entry awaiting reconciliation", apperrors.ErrConflict, taskID)
	}
	if requestedBy == "" {
		requestedBy = domain.SystemActor
	}

	entryID := task.Posting.EntryID
	status, err := s.ledger.GetEntryStatus(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Ledger status lookup failed",
			slog.String("task_id", taskID),
			slog.String("entry_id", entryID))
		return nil, fmt.Errorf("look up ledger entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Ledger entry status looked up",
		slog.String("task_id", taskID),
		slog.String("entry_id", entryID),
		slog.String("status", string(status)))

	switch status {
	case domain.LedgerEntryPosted:
		task.Posting.Success = true
		task.Posting.Message = "Posting confirmed by ledger status lookup"
		task.Posting.Timestamp = s.now().UTC()
		s.exportWorkbook(ctx, task)
		task.Finish(domain.StatePosted, approvedOutcome(task),
			fmt.Sprintf("Ledger entry %s confirmed posted on reconciliation", entryID))
		return s.finalize(ctx, task, requestedBy)
	case domain.LedgerEntryRejected:
		task.Finish(domain.StateFailed, domain.OutcomePostingRejected,
			fmt.Sprintf("%s: entry %s", apperrors.ErrPostingRejected.Error(), entryID))
		return s.finalize(ctx, task, requestedBy)
	case domain.LedgerEntryNotFound:
		// Nothing reached the ledger, so the invoice number is released for resubmission.
		task.Posting = nil
		task.Reason = fmt.Sprintf("%s; ledger has no entry %s, invoice claim released", task.Reason, entryID)
		s.settleInvoice(ctx, task, requestedBy)
		if err := s.checkpoint(ctx, task, requestedBy); err != nil {
			return nil, err
		}
		return task, nil
	default:
		return task, nil
	}
}

func (s *pipelineService) GetTask(ctx context.Context, taskID string) (*domain.PipelineTask, error) {
	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load task", slog.String("task_id", taskID))
		}
		return nil, err
	}
	return task, nil
}

func (s *pipelineService) ListInvoices(ctx context.Context, params dto.ListParams) (*dto.ListInvoicesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	records, nextToken, err := s.invoiceRepo.ListInvoices(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, err
	}

	resp := dto.ToListInvoicesResponse(records, nextToken)
	return &resp, nil
}

func (s *pipelineService) awaitingTask(ctx context.Context, taskID string) (*domain.PipelineTask, error) {
	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.State != domain.StateAwaitingHumanReview {
		return nil, fmt.Errorf("%w: task %s is %s, not awaiting review", apperrors.ErrConflict, taskID, task.State)
	}
	if task.Candidate == nil {
		return nil, fmt.Errorf("%w: task %s is awaiting review without a candidate", apperrors.ErrInternal, taskID)
	}
	return task, nil
}

// advance runs the state machine until the task is terminal or suspended.
func (s *pipelineService) advance(ctx context.Context, task *domain.PipelineTask, document []byte, actor string) (*domain.PipelineTask, error) {
	for {
		switch {
		case task.State.IsTerminal():
			return s.finalize(ctx, task, actor)
		case task.State == domain.StateAwaitingHumanReview:
			return s.suspend(ctx, task, actor)
		}

		s.step(ctx, task, document, actor)

		if !task.State.IsTerminal() {
			if err := s.checkpoint(ctx, task, actor); err != nil {
				return nil, err
			}
		}
	}
}

func (s *pipelineService) step(ctx context.Context, task *domain.PipelineTask, document []byte, actor string) {
	s.LogDebug(ctx, "Running pipeline step",
		slog.String("task_id", task.TaskID),
		slog.String("state", string(task.State)))

	switch task.State {
	case domain.StateExtracting:
		s.extract(ctx, task, document)
	case domain.StateDuplicateCheck:
		s.claim(ctx, task, actor)
	case domain.StateApproving:
		s.approve(task)
	case domain.StatePosting:
		s.post(ctx, task)
	default:
		task.Finish(domain.StateFailed, domain.OutcomeInternalError, fmt.Sprintf("no step for state %s", task.State))
	}
}

func (s *pipelineService) extract(ctx context.Context, task *domain.PipelineTask, document []byte) {
	if len(document) == 0 {
		task.Finish(domain.StateFailed, domain.OutcomeExtractionFailed,
			apperrors.ErrExtractionFailed.Error()+": source document is no longer available")
		return
	}

	candidate, err := s.extractor.Extract(ctx, document, task.Source.ContentType, task.Source)
	if err != nil {
		task.Finish(domain.StateFailed, domain.OutcomeExtractionFailed, err.Error())
		return
	}
	if err := candidate.Validate(); err != nil {
		task.Finish(domain.StateFailed, domain.OutcomeExtractionFailed,
			fmt.Sprintf("%s: %v", apperrors.ErrExtractionFailed.Error(), err))
		return
	}

	task.Candidate = candidate
	task.State = domain.StateDuplicateCheck
}

func (s *pipelineService) claim(ctx context.Context, task *domain.PipelineTask, actor string) {
	now := s.now().UTC()
	candidate := task.Candidate
	record := domain.InvoiceRecord{
		InvoiceID:     s.newID(),
		InvoiceNumber: candidate.InvoiceNumber,
		Vendor:        candidate.Vendor,
		Amount:        candidate.Amount,
		Description:   candidate.Description,
		InvoiceDate:   candidate.InvoiceDate,
		Status:        domain.InvoiceReceived,
		TaskID:        task.TaskID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	outcome, reason := s.claimInvoiceNumber(ctx, candidate.InvoiceNumber, func(ctx context.Context) error {
		return s.invoiceRepo.SaveInvoice(ctx, record)
	})
	if outcome != domain.OutcomeNone {
		task.Finish(terminalStateFor(outcome), outcome, reason)
		return
	}

	task.InvoiceID = record.InvoiceID
	task.State = domain.StateApproving
}

// claimInvoiceNumber runs the duplicate gate for number and writes the claim when it passes.
// The lock covers only the check and the write.
func (s *pipelineService) claimInvoiceNumber(ctx context.Context, number string, write func(context.Context) error) (domain.OutcomeKind, string) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, claimLockKey(number))
		if err != nil {
			return domain.OutcomeDuplicateCheckFail, fmt.Sprintf("could not lock invoice number %s: %v", number, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.LogWarn(ctx, "Failed to release claim lock",
					slog.String("invoice_number", number),
					slog.String("error", err.Error()))
			}
		}()
	}

	verdict, err := s.detector.CheckDuplicate(ctx, number)
	if err != nil {
		return domain.OutcomeDuplicateCheckFail, err.Error()
	}
	if verdict.IsDuplicate {
		return domain.OutcomeDuplicateInvoice, verdict.Reason
	}

	if err := write(ctx); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return domain.OutcomeDuplicateInvoice,
				fmt.Sprintf("Invoice number %s was claimed by a concurrent submission", number)
		}
		return domain.OutcomeStoreFailure, fmt.Sprintf("could not record invoice %s: %v", number, err)
	}
	return domain.OutcomeNone, ""
}

func (s *pipelineService) approve(task *domain.PipelineTask) {
	decision := s.policy.Evaluate(task.Candidate.Amount)
	task.Decision = &decision

	if !decision.Approved {
		task.State = domain.StateAwaitingHumanReview
		return
	}

	task.Reviewed = &domain.ReviewedInvoice{
		InvoiceCandidate: *task.Candidate,
		Approved:         true,
		ReviewedBy:       domain.SystemActor,
		ReviewedAt:       s.now().UTC(),
	}
	task.State = domain.StatePosting
}

func (s *pipelineService) suspend(ctx context.Context, task *domain.PipelineTask, actor string) (*domain.PipelineTask, error) {
	if err := s.gate.RequestReview(ctx, task.TaskID, *task.Candidate, task.Decision.Reason); err != nil {
		task.Finish(domain.StateFailed, domain.OutcomeStoreFailure, fmt.Sprintf("could not open review request: %v", err))
		return s.finalize(ctx, task, actor)
	}
	s.updateInvoiceStatus(ctx, task, domain.InvoiceAwaitingReview, nil, actor)

	s.LogInfo(ctx, "Task suspended for human review",
		slog.String("task_id", task.TaskID),
		slog.String("invoice_number", task.Candidate.InvoiceNumber),
		slog.String("reason", task.Decision.Reason))
	return task, nil
}

func (s *pipelineService) post(ctx context.Context, task *domain.PipelineTask) {
	entry, err := s.builder.Build(*task.Reviewed)
	if err != nil {
		outcome := domain.OutcomeInternalError
		if errors.Is(err, apperrors.ErrUnbalancedEntry) {
			outcome = domain.OutcomeUnbalancedEntry
		}
		task.Finish(domain.StateFailed, outcome, err.Error())
		return
	}
	task.Entry = entry

	start := time.Now()
	result, err := s.ledger.PostJournalEntry(ctx, *entry)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveLedgerPost("error", elapsed)

		var transportErr *apperrors.PostingTransportError
		switch {
		case errors.As(err, &transportErr):
			if transportErr.EntryID != "" {
				task.Posting = &domain.LedgerPostingResult{
					Success:   false,
					EntryID:   transportErr.EntryID,
					Message:   err.Error(),
					Timestamp: s.now().UTC(),
				}
			}
			task.Finish(domain.StateFailed, domain.OutcomePostingTransport, err.Error())
		case errors.Is(err, apperrors.ErrUnbalancedEntry):
			task.Finish(domain.StateFailed, domain.OutcomeUnbalancedEntry, err.Error())
		default:
			// Without a typed transport error there is no proof the ledger never saw the entry.
			task.Finish(domain.StateFailed, domain.OutcomeInternalError, err.Error())
		}
		return
	}

	task.Posting = result
	if !result.Success {
		s.metrics.ObserveLedgerPost("rejected", elapsed)
		task.Finish(domain.StateFailed, domain.OutcomePostingRejected,
			fmt.Sprintf("%s: %s", apperrors.ErrPostingRejected.Error(), result.Message))
		return
	}
	s.metrics.ObserveLedgerPost("success", elapsed)

	s.exportWorkbook(ctx, task)
	task.Finish(domain.StatePosted, approvedOutcome(task), result.Message)
}

func (s *pipelineService) exportWorkbook(ctx context.Context, task *domain.PipelineTask) {
	if s.exporter == nil || task.Entry == nil {
		return
	}
	ref, err := s.exporter.Export(ctx, task.TaskID, *task.Entry)
	if err != nil {
		s.LogWarn(ctx, "Workbook export failed, posting outcome unchanged",
			slog.String("task_id", task.TaskID),
			slog.String("error", err.Error()))
		return
	}
	task.Entry.Workbook = ref
}

// applyReviewedDetails copies the reviewer's invoice onto the claimed record. A changed invoice
// number goes through the duplicate gate again.
func (s *pipelineService) applyReviewedDetails(ctx context.Context, task *domain.PipelineTask, reviewed domain.ReviewedInvoice, actor string) (domain.OutcomeKind, string) {
	if task.InvoiceID == "" {
		return domain.OutcomeNone, ""
	}

	record := domain.InvoiceRecord{
		InvoiceID:     task.InvoiceID,
		InvoiceNumber: reviewed.InvoiceNumber,
		Vendor:        reviewed.Vendor,
		Amount:        reviewed.Amount,
		Description:   reviewed.Description,
		InvoiceDate:   reviewed.InvoiceDate,
		TaskID:        task.TaskID,
		AuditFields: domain.AuditFields{
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: actor,
		},
	}
	write := func(ctx context.Context) error {
		return s.invoiceRepo.UpdateInvoiceDetails(ctx, record)
	}

	if reviewed.InvoiceNumber == task.Candidate.InvoiceNumber {
		if err := write(ctx); err != nil {
			return domain.OutcomeStoreFailure, fmt.Sprintf("could not update invoice %s: %v", reviewed.InvoiceNumber, err)
		}
		return domain.OutcomeNone, ""
	}

	s.LogInfo(ctx, "Reviewer changed the invoice number",
		slog.String("task_id", task.TaskID),
		slog.String("from", task.Candidate.InvoiceNumber),
		slog.String("to", reviewed.InvoiceNumber))
	return s.claimInvoiceNumber(ctx, reviewed.InvoiceNumber, write)
}

// finalize settles the invoice record, writes the terminal checkpoint and records the outcome.
func (s *pipelineService) finalize(ctx context.Context, task *domain.PipelineTask, actor string) (*domain.PipelineTask, error) {
	s.settleInvoice(ctx, task, actor)
	if err := s.checkpoint(ctx, task, actor); err != nil {
		return nil, err
	}
	s.metrics.ObserveOutcome(task.State, task.Outcome)

	attrs := []any{
		slog.String("task_id", task.TaskID),
		slog.String("state", string(task.State)),
		slog.String("outcome", string(task.Outcome)),
		slog.String("reason", task.Reason),
	}
	if task.State == domain.StatePosted {
		s.LogInfo(ctx, "Task completed", attrs...)
	} else {
		s.LogWarn(ctx, "Task terminated", attrs...)
	}
	return task, nil
}

// settleInvoice brings the invoice record in line with the terminal outcome. Outcomes after which
// the invoice provably never reached the ledger, and no reviewer ruled against it, release the claim.
func (s *pipelineService) settleInvoice(ctx context.Context, task *domain.PipelineTask, actor string) {
	if task.InvoiceID == "" {
		return
	}

	var entryID *string
	if task.Posting != nil && task.Posting.EntryID != "" {
		id := task.Posting.EntryID
		entryID = &id
	}

	switch task.Outcome {
	case domain.OutcomeAutoApproved, domain.OutcomeHumanApproved:
		s.updateInvoiceStatus(ctx, task, domain.InvoicePosted, entryID, actor)
	case domain.OutcomeReviewRejected, domain.OutcomePostingRejected:
		s.updateInvoiceStatus(ctx, task, domain.InvoiceRejected, entryID, actor)
	case domain.OutcomeReviewCancelled, domain.OutcomeUnbalancedEntry, domain.OutcomeDuplicateInvoice:
		s.releaseClaim(ctx, task)
	case domain.OutcomePostingTransport:
		if entryID == nil {
			s.releaseClaim(ctx, task)
			return
		}
		s.updateInvoiceStatus(ctx, task, domain.InvoiceFailed, entryID, actor)
	default:
		s.updateInvoiceStatus(ctx, task, domain.InvoiceFailed, entryID, actor)
	}
}

func (s *pipelineService) releaseClaim(ctx context.Context, task *domain.PipelineTask) {
	if err := s.invoiceRepo.DeleteInvoice(ctx, task.InvoiceID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to release invoice claim",
			slog.String("task_id", task.TaskID),
			slog.String("invoice_id", task.InvoiceID))
		return
	}
	s.LogInfo(ctx, "Invoice claim released",
		slog.String("task_id", task.TaskID),
		slog.String("invoice_id", task.InvoiceID))
}

func (s *pipelineService) updateInvoiceStatus(ctx context.Context, task *domain.PipelineTask, status domain.InvoiceStatus, entryID *string, actor string) {
	if task.InvoiceID == "" {
		return
	}
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, task.InvoiceID, status, entryID, actor); err != nil {
		s.LogError(ctx, err, "Failed to update invoice status",
			slog.String("task_id", task.TaskID),
			slog.String("invoice_id", task.InvoiceID),
			slog.String("status", string(status)))
	}
}

func (s *pipelineService) checkpoint(ctx context.Context, task *domain.PipelineTask, actor string) error {
	task.LastUpdatedAt = s.now().UTC()
	task.LastUpdatedBy = actor
	if err := s.taskRepo.UpdateTask(ctx, task); err != nil {
		s.LogError(ctx, err, "Failed to checkpoint task",
			slog.String("task_id", task.TaskID),
			slog.String("state", string(task.State)))
		return fmt.Errorf("checkpoint task %s: %w", task.TaskID, err)
	}
	return nil
}

func terminalStateFor(outcome domain.OutcomeKind) domain.PipelineState {
	switch outcome {
	case domain.OutcomeDuplicateInvoice, domain.OutcomeReviewRejected:
		return domain.StateRejected
	case domain.OutcomeReviewCancelled:
		return domain.StateCancelled
	default:
		return domain.StateFailed
	}
}

func approvedOutcome(task *domain.PipelineTask) domain.OutcomeKind {
	if task.Decision != nil && !task.Decision.Approved {
		return domain.OutcomeHumanApproved
	}
	return domain.OutcomeAutoApproved
}
