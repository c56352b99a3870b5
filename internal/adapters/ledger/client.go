package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/platform/logging"
	"github.com/SscSPs/invoice_pipeline/internal/utils/retry"
	"github.com/sony/gobreaker"
)

// maxResponseBytes bounds how much of a ledger response is read.
const maxResponseBytes = 1 << 20

// HTTPClientConfig configures the Ledger API client.
type HTTPClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Breaker trips after this many consecutive transport failures.
	BreakerConsecutiveFailures uint32
	BreakerOpenTimeout         time.Duration
}

// HTTPLedgerClient talks to the external ledger over HTTP.
//
// A post is retried only while the ledger has not issued an entry id. Once an id is known the
// client stops and reports it in *apperrors.PostingTransportError so the caller can look up the
// entry status instead of posting twice.
type HTTPLedgerClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	retryOpts  []retry.Option
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewHTTPLedgerClient builds a client. httpClient may be nil.
func NewHTTPLedgerClient(cfg HTTPClientConfig, httpClient *http.Client) (*HTTPLedgerClient, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid ledger base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 10 * time.Second
	}
	if cfg.BreakerConsecutiveFailures == 0 {
		cfg.BreakerConsecutiveFailures = 5
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	threshold := cfg.BreakerConsecutiveFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ledger-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Default().Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &HTTPLedgerClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		retryOpts: []retry.Option{
			retry.WithMaxAttempts(cfg.MaxAttempts),
			retry.WithBaseDelay(cfg.RetryBaseDelay),
			retry.WithMaxDelay(cfg.RetryMaxDelay),
			retry.WithShouldRetry(isRetryable),
		},
		httpClient: httpClient,
		breaker:    breaker,
	}, nil
}

var _ portssvc.LedgerClient = (*HTTPLedgerClient)(nil)

func isRetryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var transportErr *apperrors.PostingTransportError
	return errors.As(err, &transportErr) && transportErr.Retryable()
}

func (c *HTTPLedgerClient) PostJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.LedgerPostingResult, error) {
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: refusing to transmit: %v", apperrors.ErrUnbalancedEntry, err)
	}
	body, err := json.Marshal(toEntryPayload(entry))
	if err != nil {
		return nil, fmt.Errorf("encode journal entry: %w", err)
	}

	logger := logging.FromContext(ctx)
	var result *domain.LedgerPostingResult
	attempt := 0

	err = retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.post(ctx, body)
		})
		if err != nil {
			logger.Warn("Ledger post attempt failed",
				slog.Int("attempt", attempt),
				slog.String("invoice_number", entry.InvoiceNumber),
				slog.Bool("retryable", isRetryable(err)),
				slog.String("error", err.Error()))
			return err
		}
		result = out.(*domain.LedgerPostingResult)
		return nil
	}, c.retryOpts...)
	if err != nil {
		return nil, asTransportError(err)
	}
	return result, nil
}

// asTransportError makes breaker rejections surface as transport errors. Nothing was sent in that case.
func asTransportError(err error) error {
	var transportErr *apperrors.PostingTransportError
	if errors.As(err, &transportErr) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &apperrors.PostingTransportError{Err: fmt.Errorf("ledger unavailable (circuit breaker open): %w", err)}
	}
	return err
}

// post performs one request. Returned errors count against the circuit breaker, so business
// rejections come back as results.
func (c *HTTPLedgerClient) post(ctx context.Context, body []byte) (*domain.LedgerPostingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/journal-entries", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.PostingTransportError{Err: err}
	}
	defer resp.Body.Close()

	entryID := resp.Header.Get(EntryIDHeader)
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	var payload postingPayload
	decodeErr := readErr
	if decodeErr == nil {
		decodeErr = json.Unmarshal(raw, &payload)
	}
	if entryID == "" {
		entryID = payload.EntryID
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if decodeErr != nil {
			return nil, &apperrors.PostingTransportError{EntryID: entryID, Err: fmt.Errorf("unreadable ledger response: %w", decodeErr)}
		}
		result := payload.toDomain()
		if result.EntryID == "" {
			result.EntryID = entryID
		}
		if result.Success && result.EntryID == "" {
			return nil, &apperrors.PostingTransportError{Err: errors.New("ledger reported success without an entry id")}
		}
		return result, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("ledger refused credentials: HTTP %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests:
		// The ledger declined a well-formed request.
		result := &domain.LedgerPostingResult{Success: false, EntryID: entryID, Message: payload.Message, Timestamp: payload.Timestamp}
		if result.Message == "" {
			result.Message = fmt.Sprintf("ledger declined entry with HTTP %d", resp.StatusCode)
		}
		return result, nil
	default:
		return nil, &apperrors.PostingTransportError{EntryID: entryID, Err: fmt.Errorf("ledger answered HTTP %d", resp.StatusCode)}
	}
}

func (c *HTTPLedgerClient) GetEntryStatus(ctx context.Context, entryID string) (domain.LedgerEntryStatus, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.status(ctx, entryID)
	})
	if err != nil {
		return "", fmt.Errorf("ledger status lookup: %w", err)
	}
	return out.(domain.LedgerEntryStatus), nil
}

func (c *HTTPLedgerClient) status(ctx context.Context, entryID string) (domain.LedgerEntryStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/journal-entries/%s/status", c.baseURL, url.PathEscape(entryID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.LedgerEntryNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ledger answered HTTP %d", resp.StatusCode)
	}

	var payload statusPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("unreadable status response: %w", err)
	}
	switch status := domain.LedgerEntryStatus(payload.Status); status {
	case domain.LedgerEntryPosted, domain.LedgerEntryPending, domain.LedgerEntryRejected, domain.LedgerEntryNotFound:
		return status, nil
	default:
		return "", fmt.Errorf("unknown ledger entry status %q", payload.Status)
	}
}

func (c *HTTPLedgerClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
