package service

import (
	"context"
	"sync"
	"time"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
)

const persistTimeout = 5 * time.Second

// CartSession binds one identity partition to an in-memory line-item store
// and keeps the partition synchronized write-behind. The in-memory store is
// the source of truth for the session; persistence failures are logged and
// swallowed, never surfaced to the caller.
type CartSession struct {
	mu        sync.Mutex
	store     *CartStore
	repo      repository.CartRepository
	partition string
	lastTouch time.Time

	// loadOnce gates the first-touch load; every caller of
	// CartSessionManager.Session waits on it before the session is handed out.
	loadOnce sync.Once

	// persistMu serializes background writers so a slow save can never
	// overwrite a later one with stale state.
	persistMu sync.Mutex
}

func newCartSession(partition string, repo repository.CartRepository) *CartSession {
	return &CartSession{
		store:     NewCartStore(),
		repo:      repo,
		partition: partition,
		lastTouch: time.Now(),
	}
}

// Partition returns the storage partition key this session owns.
func (s *CartSession) Partition() string {
	return s.partition
}

func (s *CartSession) touch() {
	s.lastTouch = time.Now()
}

// load replaces the in-memory items with the partition's persisted contents.
// A missing or failed read starts the session empty.
func (s *CartSession) load(ctx context.Context) {
	items, err := s.repo.Load(ctx, s.partition)
	if err != nil {
		logger.Warn("Starting cart session empty after load failure", map[string]interface{}{
			"partition": s.partition,
		})
		items = nil
	}
	s.mu.Lock()
	s.store.Replace(items)
	s.touch()
	s.mu.Unlock()
}

// scheduleSync persists the current items asynchronously. Each writer
// snapshots state at the moment it runs, so the last writer always lands the
// freshest state.
func (s *CartSession) scheduleSync() {
	go func() {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()

		s.mu.Lock()
		items := s.store.Items()
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.repo.Save(ctx, s.partition, items); err != nil {
			logger.Warn("Cart persistence write failed; in-memory state retained", map[string]interface{}{
				"partition": s.partition,
				"error":     err.Error(),
			})
		}
	}()
}

// Flush persists the current items synchronously. Used before an identity
// switch and at shutdown.
func (s *CartSession) Flush(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	items := s.store.Items()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, s.partition, items); err != nil {
		logger.Warn("Cart flush failed", map[string]interface{}{
			"partition": s.partition,
			"error":     err.Error(),
		})
	}
}

// Add reconciles a product into the cart. See CartStore.Add for semantics.
func (s *CartSession) Add(p model.ProductSnapshot, variantToken string, quantity int) ChangeResult {
	s.mu.Lock()
	result := s.store.Add(p, variantToken, quantity)
	s.touch()
	s.mu.Unlock()

	if result.Changed() {
		s.scheduleSync()
	}
	return result
}

// UpdateQuantity sets a line item's quantity, removing it at zero.
func (s *CartSession) UpdateQuantity(productID uint, variantToken string, quantity int) ChangeResult {
	s.mu.Lock()
	result := s.store.UpdateQuantity(productID, variantToken, quantity)
	s.touch()
	s.mu.Unlock()

	if result.Changed() {
		s.scheduleSync()
	}
	return result
}

// Remove deletes a line item. Idempotent.
func (s *CartSession) Remove(productID uint, variantToken string) ChangeResult {
	s.mu.Lock()
	result := s.store.Remove(productID, variantToken)
	s.touch()
	s.mu.Unlock()

	if result.Changed() {
		s.scheduleSync()
	}
	return result
}

// RemoveMany prunes purchased items after order placement.
func (s *CartSession) RemoveMany(keys []model.LineItemKey) int {
	s.mu.Lock()
	removed := s.store.RemoveMany(keys)
	s.touch()
	s.mu.Unlock()

	if removed > 0 {
		s.scheduleSync()
	}
	return removed
}

// Clear empties the cart and drops the persisted partition.
func (s *CartSession) Clear() ChangeResult {
	s.mu.Lock()
	s.store.Clear()
	s.touch()
	s.mu.Unlock()

	go func() {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.repo.Delete(ctx, s.partition); err != nil {
			logger.Warn("Cart partition delete failed", map[string]interface{}{
				"partition": s.partition,
				"error":     err.Error(),
			})
		}
	}()
	return ChangeResult{Status: ChangeCleared}
}

// Items returns the line items in insertion order.
func (s *CartSession) Items() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Items()
}

// Count sums quantities across all line items.
func (s *CartSession) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Count()
}

// Subtotal is the informational price sum, not the checkout breakdown.
func (s *CartSession) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Subtotal()
}

// idleSince reports the last mutation or read touch.
func (s *CartSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouch
}

// CartSessionManager maps identity partitions to live sessions. A session is
// materialized from persistence on first touch; switching identities flushes
// the old partition before the new one loads, so carts never blend across
// accounts.
type CartSessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*CartSession
	repo     repository.CartRepository
}

func NewCartSessionManager(repo repository.CartRepository) *CartSessionManager {
	return &CartSessionManager{
		sessions: make(map[string]*CartSession),
		repo:     repo,
	}
}

// Session returns the live session for an identity, loading its partition
// from persistence on first touch. Loading is a full replace, never a merge.
func (m *CartSessionManager) Session(ctx context.Context, identity model.Identity) *CartSession {
	partition := identity.PartitionKey()

	m.mu.RLock()
	session, ok := m.sessions[partition]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if session, ok = m.sessions[partition]; !ok {
			session = newCartSession(partition, m.repo)
			m.sessions[partition] = session
		}
		m.mu.Unlock()
	}

	// Concurrent first-touch callers block here until the load lands, so a
	// mutation committed through one request can never be overwritten by
	// another request's in-flight load of the same partition.
	session.loadOnce.Do(func() { session.load(ctx) })
	return session
}

// Resolve returns the session the request should operate on. An authenticated
// identity still carrying a guest token marks the login transition: the
// lingering guest session is handed over before the user's partition is
// served. Everything else resolves directly.
func (m *CartSessionManager) Resolve(ctx context.Context, identity model.Identity) *CartSession {
	if identity.Authenticated && identity.GuestToken != "" {
		return m.SwitchIdentity(ctx, model.Identity{GuestToken: identity.GuestToken}, identity)
	}
	return m.Session(ctx, identity)
}

// SwitchIdentity hands the cart over from one identity to another: the old
// partition is fully flushed and its session retired before the new partition
// is loaded, so carts never blend across accounts.
func (m *CartSessionManager) SwitchIdentity(ctx context.Context, from, to model.Identity) *CartSession {
	fromKey := from.PartitionKey()

	m.mu.Lock()
	old := m.sessions[fromKey]
	delete(m.sessions, fromKey)
	m.mu.Unlock()
	if old != nil {
		old.Flush(ctx)
	}

	return m.Session(ctx, to)
}

// FlushAll synchronously persists every live session.
func (m *CartSessionManager) FlushAll(ctx context.Context) {
	m.mu.RLock()
	sessions := make([]*CartSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.Flush(ctx)
	}
}

// EvictIdle flushes and drops sessions untouched for longer than maxIdle,
// returning the number evicted. Evicted carts reload from persistence on the
// next touch.
func (m *CartSessionManager) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	idle := make([]*CartSession, 0)
	for key, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Flush(ctx)
	}
	if len(idle) > 0 {
		logger.Info("Evicted idle cart sessions", map[string]interface{}{
			"count": len(idle),
		})
	}
	return len(idle)
}
