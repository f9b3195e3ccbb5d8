// Package notify delivers price alerts to their destination channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"pricewatch-service/internal/application"
	"pricewatch-service/internal/domain"
	"pricewatch-service/internal/infrastructure/httpx"
)

var _ application.Notifier = (*Webhook)(nil)

// Webhook posts one JSON message per alert to a chat webhook. A non-2xx
// response or transport failure surfaces as an error so the scheduler keeps
// the subscription and retries next tick.
type Webhook struct {
	URL    string
	Client *httpx.Client
	Log    *zap.Logger
}

type webhookMessage struct {
	ChannelID string       `json:"channel_id"`
	MentionID string       `json:"mention_id"`
	Text      string       `json:"text"`
	Alert     webhookAlert `json:"alert"`
}

type webhookAlert struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	TargetPrice string `json:"target_price"`
	Currency    string `json:"currency"`
}

func (w *Webhook) Notify(ctx context.Context, destinationID, mentionID string, a domain.Alert) error {
	msg := webhookMessage{
		ChannelID: destinationID,
		MentionID: mentionID,
		Text: fmt.Sprintf("%s is down to %s %s (target %s): %s",
			a.Title, a.Price.StringFixed(2), a.Currency, a.TargetPrice.StringFixed(2), a.ItemID),
		Alert: webhookAlert{
			ItemID:      a.ItemID,
			Title:       a.Title,
			Price:       a.Price.String(),
			TargetPrice: a.TargetPrice.String(),
			Currency:    a.Currency,
		},
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = &httpx.Client{}
	}
	if err := client.DoJSON(ctx, req, nil, zapKV{log: w.Log}); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// zapKV bridges the httpx retry log to zap.
type zapKV struct{ log *zap.Logger }

func (z zapKV) Info(msg string, kv ...any) {
	if z.log != nil {
		z.log.Sugar().Infow(msg, kv...)
	}
}

func (z zapKV) Warn(msg string, kv ...any) {
	if z.log != nil {
		z.log.Sugar().Warnw(msg, kv...)
	}
}
