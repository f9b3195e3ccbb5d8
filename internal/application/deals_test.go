package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newDetector(h *fakeHistory) *DealDetector {
	return NewDealDetector(h, decimal.NewFromInt(5))
}

func Test_Scan_IncludesDropAtThreshold(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/a", 100, 90) // 10.0%
	h.seed("https://shop.test/b", 100, 95) // exactly 5.0%
	h.seed("https://shop.test/c", 100, 96) // 4.0%, excluded

	deals, err := newDetector(h).Scan(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	require.Equal(t, "https://shop.test/a", deals[0].ItemID)
	require.Equal(t, "10", deals[0].DropPct.String())
	require.Equal(t, "https://shop.test/b", deals[1].ItemID)
	require.Equal(t, "5", deals[1].DropPct.String())
}

func Test_Scan_ExcludesDropThatOnlyRoundsToThreshold(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/a", 10000, 9504) // 4.96%, rounds to 5.0

	deals, err := newDetector(h).Scan(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, deals)
}

func Test_Scan_PropagatesStoreFailure(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/a", 100, 90)
	h.latestTwoErr = errBoom

	_, err := newDetector(h).Scan(context.Background(), 5)
	require.ErrorIs(t, err, errBoom)
}

func Test_Scan_SkipsShortHistory(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/a", 100)

	deals, err := newDetector(h).Scan(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, deals)
}

func Test_Scan_TieBreaksByItemID(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/b", 100, 90)
	h.seed("https://shop.test/a", 100, 90)

	deals, err := newDetector(h).Scan(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	require.Equal(t, "https://shop.test/a", deals[0].ItemID)
	require.Equal(t, "https://shop.test/b", deals[1].ItemID)
}

func Test_Scan_AppliesLimit(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/a", 100, 80)
	h.seed("https://shop.test/b", 100, 70)
	h.seed("https://shop.test/c", 100, 60)

	deals, err := newDetector(h).Scan(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	require.Equal(t, "https://shop.test/c", deals[0].ItemID)
	require.Equal(t, "https://shop.test/b", deals[1].ItemID)
}

func Test_Scan_RoundsToOneDecimal(t *testing.T) {
	t.Parallel()
	h := newFakeHistory()
	h.seed("https://shop.test/a", 3, 2) // 33.333...%

	deals, err := newDetector(h).Scan(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	require.Equal(t, "33.3", deals[0].DropPct.String())
}
