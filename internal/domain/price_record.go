package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is a single observed price for an item. Immutable once stored.
type PriceRecord struct {
	Title      string
	Price      decimal.Decimal
	Currency   string
	ObservedAt time.Time
}

// Snapshot is what a fetch of an item page yields right now.
type Snapshot struct {
	Title    string
	Price    decimal.Decimal
	Currency string
}

// PriceStats summarizes the retained series of one item.
type PriceStats struct {
	Low     decimal.Decimal
	High    decimal.Decimal
	Average decimal.Decimal // rounded to 2 decimals
	Count   int
	Latest  PriceRecord
}

// RecordOutcome tells the caller what a write to the history did.
type RecordOutcome string

const (
	// Recorded means a new observation was appended.
	Recorded RecordOutcome = "recorded"
	// Deduped means an observation already existed for the same day; the
	// first observation of the day wins and later ones are discarded.
	Deduped RecordOutcome = "deduped"
)
