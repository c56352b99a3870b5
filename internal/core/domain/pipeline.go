package domain

// PipelineState is a node of the invoice pipeline state machine.
type PipelineState string

const (
	StateExtracting          PipelineState = "EXTRACTING"
	StateDuplicateCheck      PipelineState = "DUPLICATE_CHECK"
	StateApproving           PipelineState = "APPROVING"
	StateAwaitingHumanReview PipelineState = "AWAITING_HUMAN_REVIEW"
	StatePosting             PipelineState = "POSTING"
	StatePosted              PipelineState = "POSTED"
	StateRejected            PipelineState = "REJECTED"
	StateFailed              PipelineState = "FAILED"
	StateCancelled           PipelineState = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible from the state.
func (s PipelineState) IsTerminal() bool {
	switch s {
	case StatePosted, StateRejected, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// OutcomeKind qualifies a terminal state with the originating cause.
type OutcomeKind string

const (
	OutcomeNone               OutcomeKind = ""
	OutcomeAutoApproved       OutcomeKind = "AutoApproved"
	OutcomeHumanApproved      OutcomeKind = "HumanApproved"
	OutcomeExtractionFailed   OutcomeKind = "ExtractionFailed"
	OutcomeDuplicateInvoice   OutcomeKind = "DuplicateInvoice"
	OutcomeReviewRejected     OutcomeKind = "ReviewRejected"
	OutcomeReviewCancelled    OutcomeKind = "ReviewCancelled"
	OutcomeUnbalancedEntry    OutcomeKind = "UnbalancedEntry"
	OutcomePostingTransport   OutcomeKind = "PostingTransportError"
	OutcomePostingRejected    OutcomeKind = "PostingBusinessRejection"
	OutcomeDuplicateCheckFail OutcomeKind = "DuplicateCheckFailed"
	OutcomeStoreFailure       OutcomeKind = "StoreFailure"
	OutcomeInternalError      OutcomeKind = "InternalError"
)

// PipelineTask is the durable checkpoint of one invoice submission.
// Everything needed to continue after a restart lives here; nothing is kept on a goroutine stack
// across the review suspension.
type PipelineTask struct {
	TaskID    string               `json:"taskID"`
	State     PipelineState        `json:"state"`
	Outcome   OutcomeKind          `json:"outcome"`
	Reason    string               `json:"reason"`
	Source    FileRef              `json:"source"`
	Candidate *InvoiceCandidate    `json:"candidate,omitempty"`
	Decision  *ApprovalDecision    `json:"decision,omitempty"` // rule verdict
	Reviewed  *ReviewedInvoice     `json:"reviewed,omitempty"`
	Entry     *JournalEntry        `json:"entry,omitempty"`
	Posting   *LedgerPostingResult `json:"posting,omitempty"`
	InvoiceID string               `json:"invoiceID,omitempty"` // claimed invoice record
	AuditFields
}

// Finish moves the task into a terminal state.
func (t *PipelineTask) Finish(state PipelineState, outcome OutcomeKind, reason string) {
	t.State = state
	t.Outcome = outcome
	t.Reason = reason
}
