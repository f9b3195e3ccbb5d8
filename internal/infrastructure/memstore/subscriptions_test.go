package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pricewatch-service/internal/domain"
)

func watch(owner, itemID string, target int64) domain.TrackedItem {
	return domain.TrackedItem{
		OwnerID:       owner,
		DestinationID: "chan-1",
		ItemID:        itemID,
		TargetPrice:   decimal.NewFromInt(target),
		CreatedAt:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func Test_Upsert_OverwritesSameKey(t *testing.T) {
	t.Parallel()
	s := NewSubscriptions()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, watch("owner-1", "https://shop.test/a", 100)))
	require.NoError(t, s.Upsert(ctx, watch("owner-1", "https://shop.test/a", 80)))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].TargetPrice.Equal(decimal.NewFromInt(80)))
}

func Test_Remove_AbsentIsNoop(t *testing.T) {
	t.Parallel()
	s := NewSubscriptions()

	require.NoError(t, s.Remove(context.Background(), "owner-1", "https://shop.test/a"))
}

func Test_ListFor_FiltersByOwner(t *testing.T) {
	t.Parallel()
	s := NewSubscriptions()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, watch("owner-1", "https://shop.test/a", 100)))
	require.NoError(t, s.Upsert(ctx, watch("owner-1", "https://shop.test/b", 50)))
	require.NoError(t, s.Upsert(ctx, watch("owner-2", "https://shop.test/a", 70)))

	mine, err := s.ListFor(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func Test_ListAll_IsSnapshot(t *testing.T) {
	t.Parallel()
	s := NewSubscriptions()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, watch("owner-1", "https://shop.test/a", 100)))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "owner-1", "https://shop.test/a"))

	// The snapshot taken before the removal is unaffected.
	require.Len(t, all, 1)
}
