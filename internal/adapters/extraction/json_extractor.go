package extraction

import (
	"context"
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
)

// JSONDocumentExtractor reads documents that already are JSON invoices. It backs local runs and tests.
type JSONDocumentExtractor struct{}

func NewJSONDocumentExtractor() *JSONDocumentExtractor {
	return &JSONDocumentExtractor{}
}

var _ portssvc.Extractor = (*JSONDocumentExtractor)(nil)

func (e *JSONDocumentExtractor) Extract(ctx context.Context, data []byte, mimeType string, source domain.FileRef) (*domain.InvoiceCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExtractionFailed, err)
	}
	if mt := mediaType(mimeType); !isTextLike(mt) {
		return nil, fmt.Errorf("%w: unsupported document type %q", apperrors.ErrExtractionFailed, mt)
	}
	return parseInvoiceJSON(data, source)
}
