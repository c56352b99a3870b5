package apperrors_test

import (
	"errors"
	"io"
	"testing"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestPostingTransportError(t *testing.T) {
	withoutID := &apperrors.PostingTransportError{Err: io.ErrUnexpectedEOF}
	assert.True(t, withoutID.Retryable())
	assert.ErrorIs(t, withoutID, apperrors.ErrPostingTransport)
	assert.ErrorIs(t, withoutID, io.ErrUnexpectedEOF)

	withID := &apperrors.PostingTransportError{EntryID: "je-1", Err: io.ErrUnexpectedEOF}
	assert.False(t, withID.Retryable())
	assert.Contains(t, withID.Error(), "je-1")

	var target *apperrors.PostingTransportError
	wrapped := errors.Join(errors.New("posting"), withID)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "je-1", target.EntryID)
}

func TestAppError(t *testing.T) {
	err := apperrors.NewAppError(500, "failed to save", apperrors.ErrDuplicate)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Equal(t, "failed to save: resource already exists", err.Error())
}
