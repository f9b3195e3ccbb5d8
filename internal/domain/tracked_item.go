package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrackedItem is one active price-watch subscription. Identity is
// (OwnerID, ItemID); re-subscribing the same pair overwrites the prior entry.
type TrackedItem struct {
	OwnerID       string
	DestinationID string
	ItemID        string
	TargetPrice   decimal.Decimal
	CreatedAt     time.Time
}

// Alert is the payload delivered when a subscription's target price is hit.
// Firing an alert is terminal for the subscription.
type Alert struct {
	ItemID      string
	Title       string
	Price       decimal.Decimal
	TargetPrice decimal.Decimal
	Currency    string
}
