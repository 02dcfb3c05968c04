package port

import (
	"context"

	"github.com/nayoon/stock-service/internal/core/domain"
)

type EventPublisher interface {
	PublishStockChanged(ctx context.Context, event domain.StockChangedEvent) error
}
