package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

// Engine is the command surface of the price tracker. It is a transient
// borrower of store/registry state: every call re-reads current state, nothing
// is cached between calls.
type Engine struct {
	history   HistoryStore
	subs      SubscriptionRepo
	fetcher   Fetcher
	deals     *DealDetector
	clock     Clock
	dealLimit int
}

type Option func(*Engine)

func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithDealLimit sets the deal count returned when the caller does not ask
// for a specific limit.
func WithDealLimit(n int) Option { return func(e *Engine) { e.dealLimit = n } }

func NewEngine(history HistoryStore, subs SubscriptionRepo, fetcher Fetcher, deals *DealDetector, opts ...Option) *Engine {
	e := &Engine{
		history: history,
		subs:    subs,
		fetcher: fetcher,
		deals:   deals,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = realClock{}
	}
	return e
}

// CheckItem fetches the item right now, records the observation into the
// history (ad hoc checks feed the same series the scheduler does) and returns
// the snapshot together with the current stats.
func (e *Engine) CheckItem(ctx context.Context, itemID string) (domain.Snapshot, domain.PriceStats, error) {
	snap, err := e.fetcher.Fetch(ctx, itemID)
	if err != nil {
		return domain.Snapshot{}, domain.PriceStats{}, fmt.Errorf("fetch %s: %w", itemID, err)
	}
	if _, err := e.history.Record(ctx, itemID, snap.Title, snap.Price, snap.Currency, e.clock.Now()); err != nil {
		return domain.Snapshot{}, domain.PriceStats{}, err
	}
	stats, err := e.history.Stats(ctx, itemID)
	if err != nil {
		return domain.Snapshot{}, domain.PriceStats{}, err
	}
	return snap, stats, nil
}

// Subscribe upserts a price watch for (ownerID, itemID). Subscribing again to
// the same item replaces the previous target price and creation time.
func (e *Engine) Subscribe(ctx context.Context, ownerID, destinationID, itemID string, targetPrice decimal.Decimal) (domain.TrackedItem, error) {
	if targetPrice.Sign() <= 0 {
		return domain.TrackedItem{}, ErrInvalidPrice
	}
	item := domain.TrackedItem{
		OwnerID:       ownerID,
		DestinationID: destinationID,
		ItemID:        itemID,
		TargetPrice:   targetPrice,
		CreatedAt:     e.clock.Now(),
	}
	if err := e.subs.Upsert(ctx, item); err != nil {
		return domain.TrackedItem{}, err
	}
	return item, nil
}

// Unsubscribe removes a watch; removing an absent one is not an error.
func (e *Engine) Unsubscribe(ctx context.Context, ownerID, itemID string) error {
	return e.subs.Remove(ctx, ownerID, itemID)
}

// Stats returns the aggregate view of one item's retained series.
func (e *Engine) Stats(ctx context.Context, itemID string) (domain.PriceStats, error) {
	return e.history.Stats(ctx, itemID)
}

// Deals runs the drop scan over the whole store.
func (e *Engine) Deals(ctx context.Context, limit int) ([]domain.Deal, error) {
	if limit <= 0 {
		limit = e.dealLimit
	}
	return e.deals.Scan(ctx, limit)
}

// Subscriptions lists the active watches of one owner.
func (e *Engine) Subscriptions(ctx context.Context, ownerID string) ([]domain.TrackedItem, error) {
	return e.subs.ListFor(ctx, ownerID)
}
