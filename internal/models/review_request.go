package models

import "time"

// ReviewRequest is a row of the review_requests table.
type ReviewRequest struct {
	TaskID      string     `db:"task_id"`
	Candidate   []byte     `db:"candidate"`
	Suggested   []byte     `db:"suggested"`
	RuleReason  string     `db:"rule_reason"`
	Status      string     `db:"status"`
	RequestedAt time.Time  `db:"requested_at"`
	DecidedAt   *time.Time `db:"decided_at"`
	DecidedBy   *string    `db:"decided_by"`
	Comment     *string    `db:"comment"`
}
