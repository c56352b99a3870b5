package lock

import (
	"context"
	"strings"
	"sync"

	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
)

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// LocalClaimLocker is an in-process keyed mutex for single-instance deployments.
// Entries are dropped once nobody holds or waits for a key.
type LocalClaimLocker struct {
	mu   sync.Mutex
	keys map[string]*keyedEntry
}

func NewLocalClaimLocker() *LocalClaimLocker {
	return &LocalClaimLocker{keys: make(map[string]*keyedEntry)}
}

var _ portssvc.ClaimLocker = (*LocalClaimLocker)(nil)

func (l *LocalClaimLocker) Lock(ctx context.Context, key string) (portssvc.UnlockFunc, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyLockKey
	}

	l.mu.Lock()
	entry, ok := l.keys[key]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		l.keys[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		err := ErrLockNotHeld
		once.Do(func() {
			<-entry.ch
			l.release(key, entry)
			err = nil
		})
		return err
	}, nil
}

func (l *LocalClaimLocker) release(key string, entry *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.keys, key)
	}
}

// Len reports how many keys are held or waited on.
func (l *LocalClaimLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
