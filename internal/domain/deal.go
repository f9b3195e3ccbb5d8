package domain

import "github.com/shopspring/decimal"

// Deal is a recent price drop surfaced by the deal scan.
type Deal struct {
	ItemID        string
	Title         string
	CurrentPrice  decimal.Decimal
	PreviousPrice decimal.Decimal
	DropPct       decimal.Decimal // 1 decimal
	Currency      string
}
