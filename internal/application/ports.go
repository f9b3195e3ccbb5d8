package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

// HistoryStore owns the per-item price series. Implementations must make
// Record atomic per item: two concurrent writes for the same item must not
// read stale state and drop one of them. Writes to different items must not
// block each other.
type HistoryStore interface {
	Record(ctx context.Context, itemID, title string, price decimal.Decimal, currency string, now time.Time) (domain.RecordOutcome, error)
	Stats(ctx context.Context, itemID string) (domain.PriceStats, error)
	// LatestTwo returns the two chronologically last records, previous first.
	LatestTwo(ctx context.Context, itemID string) (domain.PriceRecord, domain.PriceRecord, error)
	AllItemIDs(ctx context.Context) ([]string, error)
}

// SubscriptionRepo owns the tracked-item registry, keyed by (owner, item).
type SubscriptionRepo interface {
	Upsert(ctx context.Context, item domain.TrackedItem) error
	// Remove is a no-op when the key is absent.
	Remove(ctx context.Context, ownerID, itemID string) error
	// ListAll returns a snapshot of all subscriptions at call time.
	ListAll(ctx context.Context) ([]domain.TrackedItem, error)
	ListFor(ctx context.Context, ownerID string) ([]domain.TrackedItem, error)
}

// Fetcher resolves an item identifier to a current price snapshot.
// Callers bound it with a context timeout.
type Fetcher interface {
	Fetch(ctx context.Context, itemID string) (domain.Snapshot, error)
}

// Notifier delivers one alert to a destination channel, mentioning the owner.
type Notifier interface {
	Notify(ctx context.Context, destinationID, mentionID string, alert domain.Alert) error
}

// AlertGuard reserves an alert key so the same subscription cannot fire twice
// across restarts. Release undoes a reservation whose delivery failed.
type AlertGuard interface {
	TryReserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// NoopAlertGuard always reserves; used when Redis is disabled.
type NoopAlertGuard struct{}

func (NoopAlertGuard) TryReserve(context.Context, string) (bool, error) { return true, nil }
func (NoopAlertGuard) Release(context.Context, string) error            { return nil }

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
