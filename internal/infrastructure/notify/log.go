package notify

import (
	"context"

	"go.uber.org/zap"

	"pricewatch-service/internal/application"
	"pricewatch-service/internal/domain"
)

var _ application.Notifier = (*Log)(nil)

// Log writes alerts to the service log instead of a chat channel. Default
// for dev profiles without a webhook configured.
type Log struct {
	Logger *zap.Logger
}

func (l *Log) Notify(_ context.Context, destinationID, mentionID string, a domain.Alert) error {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("alert",
		zap.String("destination", destinationID),
		zap.String("mention", mentionID),
		zap.String("item", a.ItemID),
		zap.String("title", a.Title),
		zap.String("price", a.Price.String()),
		zap.String("target", a.TargetPrice.String()),
		zap.String("currency", a.Currency),
	)
	return nil
}
