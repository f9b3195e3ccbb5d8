package memstore

import (
	"context"
	"sync"

	"pricewatch-service/internal/domain"
)

// Subscriptions is the in-memory registry. A single mutex is enough here:
// entries are plain values and every operation is a short map touch.
type Subscriptions struct {
	mu    sync.RWMutex
	items map[subKey]domain.TrackedItem
}

type subKey struct {
	ownerID string
	itemID  string
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{items: map[subKey]domain.TrackedItem{}}
}

func (s *Subscriptions) Upsert(_ context.Context, it domain.TrackedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[subKey{ownerID: it.OwnerID, itemID: it.ItemID}] = it
	return nil
}

func (s *Subscriptions) Remove(_ context.Context, ownerID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, subKey{ownerID: ownerID, itemID: itemID})
	return nil
}

func (s *Subscriptions) ListAll(_ context.Context) ([]domain.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TrackedItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out, nil
}

func (s *Subscriptions) ListFor(_ context.Context, ownerID string) ([]domain.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TrackedItem
	for _, it := range s.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}
