package application

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

const DefaultDealLimit = 5

var hundred = decimal.NewFromInt(100)

// DealDetector ranks recent price drops across every item in the store.
// It only reads; safe to run concurrently with anything.
type DealDetector struct {
	history   HistoryStore
	threshold decimal.Decimal // minimum drop percentage, inclusive
}

func NewDealDetector(history HistoryStore, threshold decimal.Decimal) *DealDetector {
	return &DealDetector{history: history, threshold: threshold}
}

// Scan compares the two most recent observations of every item and returns the
// top drops, descending by percentage. Items with fewer than two observations
// are skipped. A drop of exactly the threshold is included.
func (d *DealDetector) Scan(ctx context.Context, limit int) ([]domain.Deal, error) {
	if limit <= 0 {
		limit = DefaultDealLimit
	}
	ids, err := d.history.AllItemIDs(ctx)
	if err != nil {
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(ids))
	for _, id := range ids {
		prev, latest, err := d.history.LatestTwo(ctx, id)
		if errors.Is(err, domain.ErrInsufficientHistory) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if prev.Price.Sign() <= 0 {
			continue
		}
		// Threshold is a strict minimum on the exact quotient; rounding is
		// presentation only and must not promote a sub-threshold drop.
		dropPct := prev.Price.Sub(latest.Price).Div(prev.Price).Mul(hundred)
		if dropPct.Cmp(d.threshold) < 0 {
			continue
		}
		deals = append(deals, domain.Deal{
			ItemID:        id,
			Title:         latest.Title,
			CurrentPrice:  latest.Price,
			PreviousPrice: prev.Price,
			DropPct:       dropPct.Round(1),
			Currency:      latest.Currency,
		})
	}

	// Deterministic order: biggest drop first, item id breaks ties.
	sort.Slice(deals, func(i, j int) bool {
		if c := deals[i].DropPct.Cmp(deals[j].DropPct); c != 0 {
			return c > 0
		}
		return deals[i].ItemID < deals[j].ItemID
	})
	if len(deals) > limit {
		deals = deals[:limit]
	}
	return deals, nil
}
