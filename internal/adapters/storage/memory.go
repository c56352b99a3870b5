package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage keeps objects in process memory.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]memoryObject)}
}

var _ portssvc.ObjectStorage = (*MemoryObjectStorage)(nil)

func (m *MemoryObjectStorage) Put(ctx context.Context, key string, data []byte, contentType string) (*domain.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return &domain.FileRef{Key: key, FileName: baseName(key), ContentType: contentType, Size: int64(len(data))}, nil
}

func (m *MemoryObjectStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: object %s", apperrors.ErrNotFound, key)
	}
	return append([]byte(nil), obj.data...), nil
}

// Keys lists stored keys in no particular order.
func (m *MemoryObjectStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
