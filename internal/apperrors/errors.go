package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is not in a state that allows the requested action.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal is returned when the cause should not be exposed to the caller.
var ErrInternal = errors.New("internal error")

// Pipeline error taxonomy. Each terminal outcome of the invoice pipeline maps to one of these.
var (
	ErrExtractionFailed = errors.New("invoice extraction failed")
	ErrDuplicateInvoice = errors.New("duplicate invoice")
	ErrReviewRejected   = errors.New("invoice rejected by reviewer")
	ErrReviewCancelled  = errors.New("invoice review cancelled")
	ErrUnbalancedEntry  = errors.New("journal entry is not balanced")
	ErrPostingTransport = errors.New("ledger transport error")
	ErrPostingRejected  = errors.New("ledger rejected journal entry")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// PostingTransportError is raised when the ledger could not be reached or did not answer usably.
// EntryID is set when the ledger issued an identifier before the failure; in that case re-posting
// is unsafe and the entry status must be looked up instead.
type PostingTransportError struct {
	EntryID string
	Err     error
}

func (e *PostingTransportError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("%s (entry %s): %v", ErrPostingTransport.Error(), e.EntryID, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrPostingTransport.Error(), e.Err)
}

func (e *PostingTransportError) Unwrap() []error {
	return []error{ErrPostingTransport, e.Err}
}

// Retryable reports whether the same entry may be posted again.
func (e *PostingTransportError) Retryable() bool {
	return e.EntryID == ""
}
