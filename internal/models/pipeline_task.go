package models

// PipelineTask is a row of the pipeline_tasks table. Nested values are stored as jsonb.
type PipelineTask struct {
	TaskID    string  `db:"task_id"`
	State     string  `db:"state"`
	Outcome   string  `db:"outcome"`
	Reason    string  `db:"reason"`
	Source    []byte  `db:"source"`
	Candidate []byte  `db:"candidate"` // Nullable jsonb
	Decision  []byte  `db:"decision"`  // Nullable jsonb
	Reviewed  []byte  `db:"reviewed"`  // Nullable jsonb
	Entry     []byte  `db:"entry"`     // Nullable jsonb
	Posting   []byte  `db:"posting"`   // Nullable jsonb
	InvoiceID *string `db:"invoice_id"`
	AuditFields
}
