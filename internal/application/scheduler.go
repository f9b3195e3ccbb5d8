package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricewatch-service/internal/domain"
)

// Scheduler periodically rechecks every tracked item: fetch the current
// price, record it, and fire-and-retire the subscription when the target is
// hit. One tick is in flight at a time; ticks run inline in the loop, so a
// slow tick delays the next one instead of overlapping it.
type Scheduler struct {
	Subs     SubscriptionRepo
	History  HistoryStore
	Fetcher  Fetcher
	Notifier Notifier
	Guard    AlertGuard
	Pacer    Pacer

	Period        time.Duration
	FetchTimeout  time.Duration
	NotifyTimeout time.Duration
	Log           *zap.Logger

	clock Clock
}

const (
	DefaultRecheckPeriod = 2 * time.Hour
	DefaultItemDelay     = 2 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// Start runs the recheck loop until the context is canceled. One pass runs
// immediately, then one per period.
func (s *Scheduler) Start(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.Period <= 0 {
		s.Period = DefaultRecheckPeriod
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = DefaultFetchTimeout
	}
	if s.NotifyTimeout <= 0 {
		s.NotifyTimeout = DefaultNotifyTimeout
	}
	if s.Guard == nil {
		s.Guard = NoopAlertGuard{}
	}
	if s.Pacer == nil {
		s.Pacer = NoopPacer{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}

	t := time.NewTicker(s.Period)
	defer t.Stop()

	log.Info("scheduler_started", zap.Duration("period", s.Period))
	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler_stopped")
			return
		case <-t.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one recheck pass over a snapshot of the registry. A failure on
// one item never halts the remaining items. Cancellation is honored between
// items, never mid-item: each item's record+notify+unsubscribe sequence is
// the unit of work.
func (s *Scheduler) Tick(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	items, err := s.Subs.ListAll(ctx)
	if err != nil {
		log.Warn("tick_list_failed", zap.Error(err))
		return
	}
	log.Info("tick_started", zap.Int("tracked", len(items)))
	for _, it := range items {
		select {
		case <-ctx.Done():
			log.Info("tick_canceled")
			return
		default:
		}
		if err := s.Pacer.Wait(ctx); err != nil {
			return
		}
		s.checkOne(ctx, log, it)
	}
}

func (s *Scheduler) checkOne(ctx context.Context, log *zap.Logger, it domain.TrackedItem) {
	fctx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	snap, err := s.Fetcher.Fetch(fctx, it.ItemID)
	cancel()
	if err != nil {
		// Skip this item; it stays tracked and is retried next tick.
		log.Warn("recheck_fetch_failed", zap.String("item", it.ItemID), zap.Error(err))
		return
	}
	if snap.Price.Sign() <= 0 {
		log.Warn("recheck_no_price", zap.String("item", it.ItemID))
		return
	}

	if _, err := s.History.Record(ctx, it.ItemID, snap.Title, snap.Price, snap.Currency, s.clock.Now()); err != nil {
		log.Warn("recheck_record_failed", zap.String("item", it.ItemID), zap.Error(err))
	}

	if snap.Price.Cmp(it.TargetPrice) > 0 {
		return
	}
	s.fireAlert(ctx, log, it, snap)
}

// fireAlert delivers the one-shot notification and retires the subscription.
// Removal happens only after a successful send; a failed send keeps the
// subscription active so the next tick retries.
func (s *Scheduler) fireAlert(ctx context.Context, log *zap.Logger, it domain.TrackedItem, snap domain.Snapshot) {
	key := alertKey(it)
	reserved, err := s.Guard.TryReserve(ctx, key)
	if err != nil {
		// Guard unavailable: the registry entry itself is still the terminal
		// state, so proceed rather than silently dropping the alert.
		log.Warn("alert_guard_failed", zap.String("item", it.ItemID), zap.Error(err))
		reserved = true
	}
	if reserved {
		alert := domain.Alert{
			ItemID:      it.ItemID,
			Title:       snap.Title,
			Price:       snap.Price,
			TargetPrice: it.TargetPrice,
			Currency:    snap.Currency,
		}
		nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout())
		err := s.Notifier.Notify(nctx, it.DestinationID, it.OwnerID, alert)
		cancel()
		if err != nil {
			log.Warn("alert_send_failed", zap.String("item", it.ItemID), zap.Error(err))
			_ = s.Guard.Release(ctx, key)
			return
		}
	}
	if err := s.Subs.Remove(ctx, it.OwnerID, it.ItemID); err != nil {
		log.Warn("alert_retire_failed", zap.String("item", it.ItemID), zap.Error(err))
		return
	}
	log.Info("alert_fired",
		zap.String("item", it.ItemID),
		zap.String("owner", it.OwnerID),
		zap.String("price", snap.Price.String()),
		zap.String("target", it.TargetPrice.String()),
	)
}

func (s *Scheduler) notifyTimeout() time.Duration {
	if s.NotifyTimeout > 0 {
		return s.NotifyTimeout
	}
	return DefaultNotifyTimeout
}

func alertKey(it domain.TrackedItem) string {
	return fmt.Sprintf("alert:%s:%s", it.OwnerID, it.ItemID)
}
