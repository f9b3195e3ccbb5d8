package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

var errBoom = errors.New("boom")

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeHistory struct {
	mu           sync.Mutex
	series       map[string][]domain.PriceRecord
	err          error
	latestTwoErr error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{series: map[string][]domain.PriceRecord{}}
}

func (f *fakeHistory) Record(_ context.Context, itemID, title string, price decimal.Decimal, currency string, now time.Time) (domain.RecordOutcome, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.series[itemID]
	if n := len(recs); n > 0 && domain.DayOf(recs[n-1].ObservedAt) == domain.DayOf(now) {
		return domain.Deduped, nil
	}
	f.series[itemID] = append(recs, domain.PriceRecord{Title: title, Price: price, Currency: currency, ObservedAt: now})
	return domain.Recorded, nil
}

func (f *fakeHistory) Stats(_ context.Context, itemID string) (domain.PriceStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.series[itemID]
	if len(recs) == 0 {
		return domain.PriceStats{}, domain.ErrNotFound
	}
	st := domain.PriceStats{Low: recs[0].Price, High: recs[0].Price, Count: len(recs), Latest: recs[len(recs)-1]}
	sum := decimal.Zero
	for _, r := range recs {
		if r.Price.Cmp(st.Low) < 0 {
			st.Low = r.Price
		}
		if r.Price.Cmp(st.High) > 0 {
			st.High = r.Price
		}
		sum = sum.Add(r.Price)
	}
	st.Average = sum.Div(decimal.NewFromInt(int64(len(recs)))).Round(2)
	return st, nil
}

func (f *fakeHistory) LatestTwo(_ context.Context, itemID string) (domain.PriceRecord, domain.PriceRecord, error) {
	if f.latestTwoErr != nil {
		return domain.PriceRecord{}, domain.PriceRecord{}, f.latestTwoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.series[itemID]
	if len(recs) < 2 {
		return domain.PriceRecord{}, domain.PriceRecord{}, domain.ErrInsufficientHistory
	}
	return recs[len(recs)-2], recs[len(recs)-1], nil
}

func (f *fakeHistory) AllItemIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.series))
	for id := range f.series {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeHistory) seed(itemID string, prices ...float64) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, p := range prices {
		f.series[itemID] = append(f.series[itemID], domain.PriceRecord{
			Title:      "item " + itemID,
			Price:      decimal.NewFromFloat(p),
			Currency:   "USD",
			ObservedAt: base.AddDate(0, 0, i),
		})
	}
}

type fakeSubs struct {
	mu    sync.Mutex
	items map[string]domain.TrackedItem
	err   error
}

func newFakeSubs() *fakeSubs { return &fakeSubs{items: map[string]domain.TrackedItem{}} }

func subKey(ownerID, itemID string) string { return ownerID + "|" + itemID }

func (f *fakeSubs) Upsert(_ context.Context, it domain.TrackedItem) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[subKey(it.OwnerID, it.ItemID)] = it
	return nil
}

func (f *fakeSubs) Remove(_ context.Context, ownerID, itemID string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, subKey(ownerID, itemID))
	return nil
}

func (f *fakeSubs) ListAll(_ context.Context) ([]domain.TrackedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TrackedItem, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeSubs) ListFor(_ context.Context, ownerID string) ([]domain.TrackedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TrackedItem
	for _, it := range f.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeSubs) has(ownerID, itemID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[subKey(ownerID, itemID)]
	return ok
}

type fakeFetcher struct {
	snaps map[string]domain.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, itemID string) (domain.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return domain.Snapshot{}, f.err
	}
	snap, ok := f.snaps[itemID]
	if !ok {
		return domain.Snapshot{}, errBoom
	}
	return snap, nil
}

type fakeNotifier struct {
	err   error
	sent  []domain.Alert
	dests []string
}

func (f *fakeNotifier) Notify(_ context.Context, destinationID, _ string, alert domain.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, alert)
	f.dests = append(f.dests, destinationID)
	return nil
}

type fakeGuard struct {
	reserved map[string]bool
	released []string
	err      error
}

func newFakeGuard() *fakeGuard { return &fakeGuard{reserved: map[string]bool{}} }

func (f *fakeGuard) TryReserve(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.reserved[key] {
		return false, nil
	}
	f.reserved[key] = true
	return true, nil
}

func (f *fakeGuard) Release(_ context.Context, key string) error {
	delete(f.reserved, key)
	f.released = append(f.released, key)
	return nil
}
