package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/models"
)

// marshalOptional encodes v as jsonb, or NULL for a nil pointer.
func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// unmarshalOptional decodes a nullable jsonb column.
func unmarshalOptional[T any](raw []byte) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ToModelPipelineTask converts a domain PipelineTask (the checkpoint) to a model PipelineTask
func ToModelPipelineTask(d domain.PipelineTask) (models.PipelineTask, error) {
	m := models.PipelineTask{
		TaskID:      d.TaskID,
		State:       string(d.State),
		Outcome:     string(d.Outcome),
		Reason:      d.Reason,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.InvoiceID != "" {
		id := d.InvoiceID
		m.InvoiceID = &id
	}

	var err error
	if m.Source, err = json.Marshal(d.Source); err != nil {
		return m, fmt.Errorf("encode source: %w", err)
	}
	if m.Candidate, err = marshalOptional(d.Candidate); err != nil {
		return m, fmt.Errorf("encode candidate: %w", err)
	}
	if m.Decision, err = marshalOptional(d.Decision); err != nil {
		return m, fmt.Errorf("encode decision: %w", err)
	}
	if m.Reviewed, err = marshalOptional(d.Reviewed); err != nil {
		return m, fmt.Errorf("encode reviewed invoice: %w", err)
	}
	if m.Entry, err = marshalOptional(d.Entry); err != nil {
		return m, fmt.Errorf("encode journal entry: %w", err)
	}
	if m.Posting, err = marshalOptional(d.Posting); err != nil {
		return m, fmt.Errorf("encode posting result: %w", err)
	}
	return m, nil
}

// ToDomainPipelineTask converts a model PipelineTask to a domain PipelineTask
func ToDomainPipelineTask(m models.PipelineTask) (*domain.PipelineTask, error) {
	d := &domain.PipelineTask{
		TaskID:      m.TaskID,
		State:       domain.PipelineState(m.State),
		Outcome:     domain.OutcomeKind(m.Outcome),
		Reason:      m.Reason,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.InvoiceID != nil {
		d.InvoiceID = *m.InvoiceID
	}
	if len(m.Source) > 0 {
		if err := json.Unmarshal(m.Source, &d.Source); err != nil {
			return nil, fmt.Errorf("decode source: %w", err)
		}
	}

	var err error
	if d.Candidate, err = unmarshalOptional[domain.InvoiceCandidate](m.Candidate); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}
	if d.Decision, err = unmarshalOptional[domain.ApprovalDecision](m.Decision); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	if d.Reviewed, err = unmarshalOptional[domain.ReviewedInvoice](m.Reviewed); err != nil {
		return nil, fmt.Errorf("decode reviewed invoice: %w", err)
	}
	if d.Entry, err = unmarshalOptional[domain.JournalEntry](m.Entry); err != nil {
		return nil, fmt.Errorf("decode journal entry: %w", err)
	}
	if d.Posting, err = unmarshalOptional[domain.LedgerPostingResult](m.Posting); err != nil {
		return nil, fmt.Errorf("decode posting result: %w", err)
	}
	return d, nil
}
