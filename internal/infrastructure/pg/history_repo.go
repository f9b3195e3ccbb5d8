package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pricewatch-service/internal/domain"
)

// HistoryRepo stores per-item price series in price_history. The
// one-record-per-day rule is enforced by the unique (item_id, observed_day)
// index, so concurrent writers for the same item cannot both land: the insert
// and the retention prune run in one transaction and the loser of the index
// race simply observes a no-op.
type HistoryRepo struct {
	db            *DB
	retentionDays int
}

func NewHistoryRepo(db *DB, retentionDays int) *HistoryRepo {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &HistoryRepo{db: db, retentionDays: retentionDays}
}

func (r *HistoryRepo) Record(ctx context.Context, itemID, title string, price decimal.Decimal, currency string, now time.Time) (domain.RecordOutcome, error) {
	if price.Sign() <= 0 {
		return "", domain.ErrInvalidPrice
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO price_history(item_id, title, price, currency, observed_at, observed_day)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (item_id, observed_day) DO NOTHING`,
		itemID, title, price.String(), currency, now.UTC(), domain.DayOf(now))
	if err != nil {
		return "", fmt.Errorf("insert observation: %w", err)
	}

	cutoff := now.UTC().Add(-time.Duration(r.retentionDays) * 24 * time.Hour)
	if _, err := tx.Exec(ctx, `
        DELETE FROM price_history WHERE item_id=$1 AND observed_at < $2`,
		itemID, cutoff); err != nil {
		return "", fmt.Errorf("prune: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Deduped, nil
	}
	return domain.Recorded, nil
}

func (r *HistoryRepo) Stats(ctx context.Context, itemID string) (domain.PriceStats, error) {
	const agg = `
        SELECT MIN(price)::text, MAX(price)::text, ROUND(AVG(price), 2)::text, COUNT(*)
        FROM price_history WHERE item_id=$1`
	var low, high, avg *string
	var count int
	if err := r.db.Pool.QueryRow(ctx, agg, itemID).Scan(&low, &high, &avg, &count); err != nil {
		return domain.PriceStats{}, fmt.Errorf("stats: %w", err)
	}
	if count == 0 {
		return domain.PriceStats{}, domain.ErrNotFound
	}

	st := domain.PriceStats{Count: count}
	var err error
	if st.Low, err = decimal.NewFromString(*low); err != nil {
		return domain.PriceStats{}, fmt.Errorf("stats low: %w", err)
	}
	if st.High, err = decimal.NewFromString(*high); err != nil {
		return domain.PriceStats{}, fmt.Errorf("stats high: %w", err)
	}
	if st.Average, err = decimal.NewFromString(*avg); err != nil {
		return domain.PriceStats{}, fmt.Errorf("stats avg: %w", err)
	}

	const last = `
        SELECT title, price::text, currency, observed_at
        FROM price_history WHERE item_id=$1
        ORDER BY observed_at DESC LIMIT 1`
	rec, err := scanRecord(r.db.Pool.QueryRow(ctx, last, itemID))
	if err != nil {
		return domain.PriceStats{}, err
	}
	st.Latest = rec
	return st, nil
}

func (r *HistoryRepo) LatestTwo(ctx context.Context, itemID string) (domain.PriceRecord, domain.PriceRecord, error) {
	const q = `
        SELECT title, price::text, currency, observed_at
        FROM price_history WHERE item_id=$1
        ORDER BY observed_at DESC LIMIT 2`
	rows, err := r.db.Pool.Query(ctx, q, itemID)
	if err != nil {
		return domain.PriceRecord{}, domain.PriceRecord{}, fmt.Errorf("latest two: %w", err)
	}
	defer rows.Close()

	var recs []domain.PriceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return domain.PriceRecord{}, domain.PriceRecord{}, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.PriceRecord{}, domain.PriceRecord{}, fmt.Errorf("latest two: %w", err)
	}
	if len(recs) < 2 {
		return domain.PriceRecord{}, domain.PriceRecord{}, domain.ErrInsufficientHistory
	}
	// Rows come newest first.
	return recs[1], recs[0], nil
}

func (r *HistoryRepo) AllItemIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT item_id FROM price_history`)
	if err != nil {
		return nil, fmt.Errorf("item ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("item ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.PriceRecord, error) {
	var rec domain.PriceRecord
	var price string
	if err := row.Scan(&rec.Title, &price, &rec.Currency, &rec.ObservedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PriceRecord{}, domain.ErrNotFound
		}
		return domain.PriceRecord{}, fmt.Errorf("scan record: %w", err)
	}
	var err error
	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("parse price: %w", err)
	}
	return rec, nil
}
