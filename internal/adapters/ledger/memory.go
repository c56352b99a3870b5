package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/google/uuid"
)

type storedEntry struct {
	entry  domain.JournalEntry
	status domain.LedgerEntryStatus
}

// MemoryLedger is a reusable in-process ledger. It is injected where no external ledger is
// configured and it backs the stand-alone mock ledger server.
type MemoryLedger struct {
	mu       sync.RWMutex
	entries  map[string]storedEntry
	accounts map[string]struct{}
	now      func() time.Time
}

// MemoryLedgerOption configures a MemoryLedger.
type MemoryLedgerOption func(*MemoryLedger)

// WithChartOfAccounts restricts postings to the named accounts. Without it any account is accepted.
func WithChartOfAccounts(names ...string) MemoryLedgerOption {
	return func(l *MemoryLedger) {
		l.accounts = make(map[string]struct{}, len(names))
		for _, n := range names {
			l.accounts[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
		}
	}
}

// WithLedgerClock overrides time.Now.
func WithLedgerClock(now func() time.Time) MemoryLedgerOption {
	return func(l *MemoryLedger) {
		l.now = now
	}
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger(opts ...MemoryLedgerOption) *MemoryLedger {
	l := &MemoryLedger{
		entries: make(map[string]storedEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ portssvc.LedgerClient = (*MemoryLedger)(nil)

// Record is the ledger side of a posting. Entries that are unbalanced or reference unknown accounts
// are declined with Success=false; declined entries still get an id so their status can be queried.
func (l *MemoryLedger) Record(entry domain.JournalEntry) domain.LedgerPostingResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.NewString()
	now := l.now().UTC()

	if err := entry.Validate(); err != nil {
		l.entries[id] = storedEntry{entry: entry, status: domain.LedgerEntryRejected}
		return domain.LedgerPostingResult{Success: false, EntryID: id, Message: fmt.Sprintf("Entry rejected: %v", err), Timestamp: now}
	}
	if unknown := l.unknownAccount(entry); unknown != "" {
		l.entries[id] = storedEntry{entry: entry, status: domain.LedgerEntryRejected}
		return domain.LedgerPostingResult{Success: false, EntryID: id, Message: fmt.Sprintf("Entry rejected: unknown account %q", unknown), Timestamp: now}
	}

	l.entries[id] = storedEntry{entry: entry, status: domain.LedgerEntryPosted}
	return domain.LedgerPostingResult{
		Success:   true,
		EntryID:   id,
		Message:   fmt.Sprintf("Journal entry for invoice %s posted", entry.InvoiceNumber),
		Timestamp: now,
	}
}

func (l *MemoryLedger) unknownAccount(entry domain.JournalEntry) string {
	if l.accounts == nil {
		return ""
	}
	for _, line := range entry.Lines {
		if _, ok := l.accounts[strings.ToLower(strings.TrimSpace(line.AccountName))]; !ok {
			return line.AccountName
		}
	}
	return ""
}

// PostJournalEntry re-validates the balance before recording, as a remote client would before transmitting.
func (l *MemoryLedger) PostJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.LedgerPostingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &apperrors.PostingTransportError{Err: err}
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnbalancedEntry, err)
	}
	result := l.Record(entry)
	return &result, nil
}

func (l *MemoryLedger) GetEntryStatus(ctx context.Context, entryID string) (domain.LedgerEntryStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	stored, ok := l.entries[entryID]
	if !ok {
		return domain.LedgerEntryNotFound, nil
	}
	return stored.status, nil
}

// Entry returns a posted or declined entry by id.
func (l *MemoryLedger) Entry(entryID string) (domain.JournalEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored, ok := l.entries[entryID]
	return stored.entry, ok
}

// Len returns the number of recorded entries, declined ones included.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
