// Package memstore provides in-memory store implementations selected with
// STORAGE=memory. They carry the same per-key atomicity contract as the pg
// implementations and back the default dev profile.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

// History keeps one series per item. Each series carries its own mutex so a
// read-modify-write on one item never blocks writes to another; the outer
// RWMutex only guards the map itself.
type History struct {
	mu            sync.RWMutex
	items         map[string]*series
	retentionDays int
}

type series struct {
	mu   sync.Mutex
	recs []domain.PriceRecord
}

func NewHistory(retentionDays int) *History {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &History{items: map[string]*series{}, retentionDays: retentionDays}
}

func (h *History) Record(_ context.Context, itemID, title string, price decimal.Decimal, currency string, now time.Time) (domain.RecordOutcome, error) {
	if price.Sign() <= 0 {
		return "", domain.ErrInvalidPrice
	}

	h.mu.Lock()
	s, ok := h.items[itemID]
	if !ok {
		s = &series{}
		h.items[itemID] = s
	}
	h.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.DayOf(now)
	for _, r := range s.recs {
		if domain.DayOf(r.ObservedAt) == day {
			return domain.Deduped, nil
		}
	}
	s.recs = append(s.recs, domain.PriceRecord{
		Title:      title,
		Price:      price,
		Currency:   currency,
		ObservedAt: now,
	})
	s.prune(now.Add(-time.Duration(h.retentionDays) * 24 * time.Hour))
	return domain.Recorded, nil
}

// prune drops records older than cutoff. Called with the series lock held.
func (s *series) prune(cutoff time.Time) {
	kept := s.recs[:0]
	for _, r := range s.recs {
		if !r.ObservedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	s.recs = kept
}

func (h *History) get(itemID string) (*series, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.items[itemID]
	return s, ok
}

func (h *History) Stats(_ context.Context, itemID string) (domain.PriceStats, error) {
	s, ok := h.get(itemID)
	if !ok {
		return domain.PriceStats{}, domain.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) == 0 {
		return domain.PriceStats{}, domain.ErrNotFound
	}

	st := domain.PriceStats{
		Low:    s.recs[0].Price,
		High:   s.recs[0].Price,
		Count:  len(s.recs),
		Latest: s.recs[len(s.recs)-1],
	}
	sum := decimal.Zero
	for _, r := range s.recs {
		if r.Price.Cmp(st.Low) < 0 {
			st.Low = r.Price
		}
		if r.Price.Cmp(st.High) > 0 {
			st.High = r.Price
		}
		sum = sum.Add(r.Price)
	}
	st.Average = sum.Div(decimal.NewFromInt(int64(st.Count))).Round(2)
	return st, nil
}

func (h *History) LatestTwo(_ context.Context, itemID string) (domain.PriceRecord, domain.PriceRecord, error) {
	s, ok := h.get(itemID)
	if !ok {
		return domain.PriceRecord{}, domain.PriceRecord{}, domain.ErrInsufficientHistory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.recs)
	if n < 2 {
		return domain.PriceRecord{}, domain.PriceRecord{}, domain.ErrInsufficientHistory
	}
	return s.recs[n-2], s.recs[n-1], nil
}

func (h *History) AllItemIDs(_ context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.items))
	for id := range h.items {
		ids = append(ids, id)
	}
	return ids, nil
}
