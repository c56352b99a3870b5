// Package extraction turns uploaded documents into invoice candidates.
package extraction

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
)

// extractedInvoice is the JSON shape both extractors read. The model is asked to answer with it.
type extractedInvoice struct {
	Vendor        string           `json:"vendor"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   string           `json:"description"`
	InvoiceDate   string           `json:"invoiceDate"`
	InvoiceNumber string           `json:"invoiceNumber"`
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, "02/01/2006", "2 January 2006", "January 2, 2006"}

func parseInvoiceDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised invoice date %q", raw)
}

// parseInvoiceJSON validates an extracted invoice and builds the candidate.
func parseInvoiceJSON(raw []byte, source domain.FileRef) (*domain.InvoiceCandidate, error) {
	var payload extractedInvoice
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: document is not a readable invoice: %v", apperrors.ErrExtractionFailed, err)
	}
	if payload.Amount == nil {
		return nil, fmt.Errorf("%w: no amount found", apperrors.ErrExtractionFailed)
	}
	date, err := parseInvoiceDate(payload.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExtractionFailed, err)
	}

	candidate, err := domain.NewInvoiceCandidate(payload.Vendor, *payload.Amount, payload.Description, date, payload.InvoiceNumber, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrExtractionFailed, err)
	}
	return &candidate, nil
}

func mediaType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}

func isTextLike(mt string) bool {
	return strings.HasPrefix(mt, "text/") || mt == "application/json" || strings.HasSuffix(mt, "+json")
}
