package ledger_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/adapters/ledger"
	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func balancedEntry(amount string) domain.JournalEntry {
	a := decimal.RequireFromString(amount)
	return domain.JournalEntry{
		EntryDate:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		InvoiceNumber: "INV-100",
		Vendor:        "Acme",
		Description:   "office chairs",
		CurrencyCode:  "USD",
		Lines: []domain.JournalLine{
			{AccountName: "Expenses", Debit: a, Credit: decimal.Zero},
			{AccountName: "Accounts Payable", Debit: decimal.Zero, Credit: a},
		},
	}
}

func newClient(t *testing.T, baseURL string, mutate func(*ledger.HTTPClientConfig)) *ledger.HTTPLedgerClient {
	t.Helper()
	cfg := ledger.HTTPClientConfig{
		BaseURL:        baseURL,
		APIKey:         "secret",
		Timeout:        time.Second,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := ledger.NewHTTPLedgerClient(cfg, nil)
	require.NoError(t, err)
	return client
}

func TestHTTPLedgerClient_AgainstMemoryLedger(t *testing.T) {
	memLedger := ledger.NewMemoryLedger()
	server := httptest.NewServer(ledger.NewAPIHandler(memLedger, "secret", nil))
	defer server.Close()
	client := newClient(t, server.URL, nil)
	ctx := context.Background()

	result, err := client.PostJournalEntry(ctx, balancedEntry("500"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.EntryID)
	assert.False(t, result.Timestamp.IsZero())

	stored, ok := memLedger.Entry(result.EntryID)
	require.True(t, ok)
	assert.True(t, stored.TotalDebits().Equal(decimal.NewFromInt(500)))

	status, err := client.GetEntryStatus(ctx, result.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerEntryPosted, status)

	status, err = client.GetEntryStatus(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerEntryNotFound, status)
}

func TestHTTPLedgerClient_BusinessRejection(t *testing.T) {
	memLedger := ledger.NewMemoryLedger(ledger.WithChartOfAccounts("Expenses"))
	server := httptest.NewServer(ledger.NewAPIHandler(memLedger, "secret", nil))
	defer server.Close()
	client := newClient(t, server.URL, nil)

	result, err := client.PostJournalEntry(context.Background(), balancedEntry("500"))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Accounts Payable")
	assert.NotEmpty(t, result.EntryID)

	status, err := client.GetEntryStatus(context.Background(), result.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerEntryRejected, status)
}

func TestHTTPLedgerClient_RefusesUnbalancedEntry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()
	client := newClient(t, server.URL, nil)

	entry := balancedEntry("500")
	entry.Lines[1].Credit = decimal.NewFromInt(499)

	_, err := client.PostJournalEntry(context.Background(), entry)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
	assert.Equal(t, int32(0), hits.Load())
}

func TestHTTPLedgerClient_RetriesWithoutEntryID(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"entryId":"entry-3","message":"ok","timestamp":"2025-04-01T10:00:00Z"}`))
	}))
	defer server.Close()
	client := newClient(t, server.URL, nil)

	result, err := client.PostJournalEntry(context.Background(), balancedEntry("500"))
	require.NoError(t, err)
	assert.Equal(t, "entry-3", result.EntryID)
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPLedgerClient_NoRetryOnceEntryIDIssued(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set(ledger.EntryIDHeader, "entry-issued")
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer server.Close()
	client := newClient(t, server.URL, nil)

	_, err := client.PostJournalEntry(context.Background(), balancedEntry("500"))
	require.Error(t, err)

	var transportErr *apperrors.PostingTransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "entry-issued", transportErr.EntryID)
	assert.False(t, transportErr.Retryable())
	assert.ErrorIs(t, err, apperrors.ErrPostingTransport)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPLedgerClient_ExhaustsRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	client := newClient(t, server.URL, nil)

	_, err := client.PostJournalEntry(context.Background(), balancedEntry("500"))
	var transportErr *apperrors.PostingTransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Empty(t, transportErr.EntryID)
	assert.True(t, transportErr.Retryable())
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPLedgerClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)
	client := newClient(t, server.URL, func(cfg *ledger.HTTPClientConfig) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.MaxAttempts = 1
	})

	_, err := client.PostJournalEntry(context.Background(), balancedEntry("500"))
	assert.ErrorIs(t, err, apperrors.ErrPostingTransport)
}

func TestHTTPLedgerClient_WrongAPIKey(t *testing.T) {
	server := httptest.NewServer(ledger.NewAPIHandler(ledger.NewMemoryLedger(), "secret", nil))
	defer server.Close()
	client := newClient(t, server.URL, func(cfg *ledger.HTTPClientConfig) {
		cfg.APIKey = "wrong"
	})

	_, err := client.PostJournalEntry(context.Background(), balancedEntry("500"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrPostingTransport)
	assert.ErrorContains(t, err, "401")
}

func TestHTTPLedgerClient_CircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	client := newClient(t, server.URL, func(cfg *ledger.HTTPClientConfig) {
		cfg.MaxAttempts = 1
		cfg.BreakerConsecutiveFailures = 2
		cfg.BreakerOpenTimeout = time.Minute
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.PostJournalEntry(ctx, balancedEntry("500"))
		assert.ErrorIs(t, err, apperrors.ErrPostingTransport)
	}
	_, err := client.PostJournalEntry(ctx, balancedEntry("500"))
	var transportErr *apperrors.PostingTransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, transportErr.Retryable())
	assert.ErrorContains(t, err, "circuit breaker open")
	assert.Equal(t, int32(2), hits.Load())
}

func TestNewHTTPLedgerClient_InvalidURL(t *testing.T) {
	_, err := ledger.NewHTTPLedgerClient(ledger.HTTPClientConfig{BaseURL: "::not a url"}, nil)
	assert.Error(t, err)
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	memLedger := ledger.NewMemoryLedger()

	result, err := memLedger.PostJournalEntry(ctx, balancedEntry("42.10"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, memLedger.Len())

	second, err := memLedger.PostJournalEntry(ctx, balancedEntry("42.10"))
	require.NoError(t, err)
	assert.NotEqual(t, result.EntryID, second.EntryID)

	unbalanced := balancedEntry("10")
	unbalanced.Lines[0].Debit = decimal.NewFromInt(11)
	_, err = memLedger.PostJournalEntry(ctx, unbalanced)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
	assert.Equal(t, 2, memLedger.Len())

	declined := memLedger.Record(unbalanced)
	assert.False(t, declined.Success)
	status, err := memLedger.GetEntryStatus(ctx, declined.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerEntryRejected, status)
}

func TestAPIHandler_MalformedBody(t *testing.T) {
	handler := ledger.NewAPIHandler(ledger.NewMemoryLedger(), "", nil)

	req := httptest.NewRequest(http.MethodPost, "/journal-entries", http.NoBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
