package pg

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

type SubscriptionRepo struct{ db *DB }

func NewSubscriptionRepo(db *DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

func (r *SubscriptionRepo) Upsert(ctx context.Context, it domain.TrackedItem) error {
	const q = `
        INSERT INTO subscriptions(owner_id, destination_id, item_id, target_price, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (owner_id, item_id) DO UPDATE
          SET destination_id=EXCLUDED.destination_id,
              target_price=EXCLUDED.target_price,
              created_at=EXCLUDED.created_at`
	_, err := r.db.Pool.Exec(ctx, q,
		it.OwnerID, it.DestinationID, it.ItemID, it.TargetPrice.String(), it.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) Remove(ctx context.Context, ownerID, itemID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE owner_id=$1 AND item_id=$2`, ownerID, itemID)
	if err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) ListAll(ctx context.Context) ([]domain.TrackedItem, error) {
	return r.list(ctx, `
        SELECT owner_id, destination_id, item_id, target_price::text, created_at
        FROM subscriptions`)
}

func (r *SubscriptionRepo) ListFor(ctx context.Context, ownerID string) ([]domain.TrackedItem, error) {
	return r.list(ctx, `
        SELECT owner_id, destination_id, item_id, target_price::text, created_at
        FROM subscriptions WHERE owner_id=$1`, ownerID)
}

func (r *SubscriptionRepo) list(ctx context.Context, q string, args ...any) ([]domain.TrackedItem, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackedItem
	for rows.Next() {
		var it domain.TrackedItem
		var target string
		if err := rows.Scan(&it.OwnerID, &it.DestinationID, &it.ItemID, &target, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if it.TargetPrice, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("parse target price: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
