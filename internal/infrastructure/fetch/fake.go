package fetch

import (
	"context"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/application"
	"pricewatch-service/internal/domain"
)

// Ensure Fake implements application.Fetcher.
var _ application.Fetcher = (*Fake)(nil)

// Fake returns a fixed price for every item; used for dev profiles.
type Fake struct {
	price decimal.Decimal
}

func NewFake(price decimal.Decimal) *Fake { return &Fake{price: price} }

func (f *Fake) Fetch(_ context.Context, itemID string) (domain.Snapshot, error) {
	return domain.Snapshot{
		Title:    "item " + itemID,
		Price:    f.price,
		Currency: "USD",
	}, nil
}
