package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
)

// KVStore is the minimal key/value surface cart persistence requires. Any
// blob store with get/set/remove satisfies it; production uses Redis.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// CartRepository persists one cart partition per identity as an opaque JSON
// blob. It never inspects item contents beyond serialization and never
// revalidates stock.
type CartRepository interface {
	Load(ctx context.Context, partition string) ([]model.LineItem, error)
	Save(ctx context.Context, partition string, items []model.LineItem) error
	Delete(ctx context.Context, partition string) error
}

type kvCartRepository struct {
	kv       KVStore
	guestTTL time.Duration
}

// NewCartRepository builds a KV-backed cart repository. Guest partitions are
// written with guestTTL so abandoned anonymous carts age out of storage; user
// partitions persist until cleared.
func NewCartRepository(kv KVStore, guestTTL time.Duration) CartRepository {
	return &kvCartRepository{kv: kv, guestTTL: guestTTL}
}

func (r *kvCartRepository) Load(ctx context.Context, partition string) ([]model.LineItem, error) {
	raw, found, err := r.kv.Get(ctx, partition)
	if err != nil {
		logger.Error("Failed to load cart partition", err, map[string]interface{}{
			"partition": partition,
		})
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var items []model.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// a corrupt blob is unrecoverable; treat the partition as empty
		logger.Warn("Discarding unreadable cart partition", map[string]interface{}{
			"partition": partition,
			"error":     err.Error(),
		})
		return nil, nil
	}

	logger.Debug("Cart partition loaded", map[string]interface{}{
		"partition": partition,
		"items":     len(items),
	})
	return items, nil
}

func (r *kvCartRepository) Save(ctx context.Context, partition string, items []model.LineItem) error {
	if len(items) == 0 {
		// an empty cart is represented by partition absence
		return r.Delete(ctx, partition)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize cart partition: %w", err)
	}

	var ttl time.Duration
	if model.IsGuestPartition(partition) {
		ttl = r.guestTTL
	}
	if err := r.kv.Set(ctx, partition, string(raw), ttl); err != nil {
		logger.Error("Failed to save cart partition", err, map[string]interface{}{
			"partition": partition,
			"items":     len(items),
		})
		return err
	}

	logger.Debug("Cart partition saved", map[string]interface{}{
		"partition": partition,
		"items":     len(items),
	})
	return nil
}

func (r *kvCartRepository) Delete(ctx context.Context, partition string) error {
	if err := r.kv.Remove(ctx, partition); err != nil {
		logger.Error("Failed to delete cart partition", err, map[string]interface{}{
			"partition": partition,
		})
		return err
	}
	return nil
}

// MemoryKV is an in-process KVStore used in tests and when Redis is disabled.
// TTLs are honored lazily on read.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
