package extraction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/adapters/extraction"
	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var source = domain.FileRef{Key: "invoices/t1/acme.json", FileName: "acme.json", ContentType: "application/json"}

func TestJSONDocumentExtractor(t *testing.T) {
	extractor := extraction.NewJSONDocumentExtractor()
	ctx := context.Background()

	tests := []struct {
		name     string
		doc      string
		mimeType string
		wantErr  bool
	}{
		{name: "numeric amount", doc: `{"vendor":"Acme","amount":500,"description":"chairs","invoiceDate":"2025-03-14","invoiceNumber":"INV-1"}`, mimeType: "application/json"},
		{name: "string amount with charset", doc: `{"vendor":"Acme","amount":"1500.25","invoiceDate":"2025-03-14T10:00:00Z","invoiceNumber":"INV-2"}`, mimeType: "text/plain; charset=utf-8"},
		{name: "negative amount", doc: `{"vendor":"Acme","amount":-1,"invoiceDate":"2025-03-14","invoiceNumber":"INV-3"}`, mimeType: "application/json", wantErr: true},
		{name: "missing number", doc: `{"vendor":"Acme","amount":1,"invoiceDate":"2025-03-14"}`, mimeType: "application/json", wantErr: true},
		{name: "missing amount", doc: `{"vendor":"Acme","invoiceDate":"2025-03-14","invoiceNumber":"INV-4"}`, mimeType: "application/json", wantErr: true},
		{name: "bad date", doc: `{"vendor":"Acme","amount":1,"invoiceDate":"soon","invoiceNumber":"INV-5"}`, mimeType: "application/json", wantErr: true},
		{name: "not json", doc: `hello`, mimeType: "text/plain", wantErr: true},
		{name: "binary type", doc: `{}`, mimeType: "application/pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(ctx, []byte(tt.doc), tt.mimeType, source)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Acme", got.Vendor)
			assert.Equal(t, source, got.SourceFile)
			assert.Equal(t, 2025, got.InvoiceDate.Year())
		})
	}
}

// fakeCompletions serves the chat completions endpoint and records the last request.
func fakeCompletions(t *testing.T, answer string, last *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(last))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:      "chatcmpl-1",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   last.Model,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
}

func newOpenAIExtractor(t *testing.T, baseURL string) *extraction.OpenAIExtractor {
	t.Helper()
	extractor, err := extraction.NewOpenAIExtractor(extraction.OpenAIConfig{APIKey: "test-key", BaseURL: baseURL + "/v1/"})
	require.NoError(t, err)
	return extractor
}

func TestOpenAIExtractor_TextDocument(t *testing.T) {
	var last openai.ChatCompletionRequest
	server := fakeCompletions(t, `{"vendor":"Acme","amount":1500,"description":"laptops","invoiceDate":"2025-03-14","invoiceNumber":"INV-9"}`, &last)
	defer server.Close()

	got, err := newOpenAIExtractor(t, server.URL).Extract(context.Background(), []byte("ACME INVOICE INV-9 total 1500"), "text/plain", source)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "INV-9", got.InvoiceNumber)

	assert.Equal(t, extraction.DefaultModel, last.Model)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, last.Messages[0].Role)
	assert.Contains(t, last.Messages[1].Content, "ACME INVOICE INV-9")
	require.NotNil(t, last.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, last.ResponseFormat.Type)
}

func TestOpenAIExtractor_ImageDocument(t *testing.T) {
	var last openai.ChatCompletionRequest
	server := fakeCompletions(t, "```json\n{\"vendor\":\"Acme\",\"amount\":\"12.50\",\"invoiceDate\":\"2025-01-02\",\"invoiceNumber\":\"R-1\"}\n```", &last)
	defer server.Close()

	got, err := newOpenAIExtractor(t, server.URL).Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png", source)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.50")))

	require.Len(t, last.Messages, 2)
	parts := last.Messages[1].MultiContent
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].ImageURL)
	assert.Contains(t, parts[1].ImageURL.URL, "data:image/png;base64,")
}

func TestOpenAIExtractor_Failures(t *testing.T) {
	var last openai.ChatCompletionRequest
	server := fakeCompletions(t, `{"vendor":"Acme","amount":-5,"invoiceDate":"2025-01-02","invoiceNumber":"R-1"}`, &last)
	defer server.Close()
	extractor := newOpenAIExtractor(t, server.URL)

	_, err := extractor.Extract(context.Background(), []byte("text"), "text/plain", source)
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)

	_, err = extractor.Extract(context.Background(), []byte("%PDF-1.7"), "application/pdf", source)
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
}

func TestOpenAIExtractor_ModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newOpenAIExtractor(t, server.URL).Extract(context.Background(), []byte("text"), "text/plain", source)
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
}

func TestNewOpenAIExtractor_RequiresKey(t *testing.T) {
	_, err := extraction.NewOpenAIExtractor(extraction.OpenAIConfig{})
	assert.Error(t, err)
}
