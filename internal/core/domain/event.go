package domain

import (
	"time"

	"github.com/google/uuid"
)

type StockOperation string

const (
	StockOperationCreate   StockOperation = "create"
	StockOperationUpdate   StockOperation = "update"
	StockOperationIncrease StockOperation = "increase"
	StockOperationDecrease StockOperation = "decrease"
)

// StockChangedEvent is emitted after a successful mutation of a product's stock.
type StockChangedEvent struct {
	EventID   string         `json:"event_id"`
	ProductID int64          `json:"product_id"`
	Operation StockOperation `json:"operation"`
	Quantity  int            `json:"quantity"`
	Remaining int            `json:"remaining"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewStockChangedEvent(productID int64, op StockOperation, quantity, remaining int) StockChangedEvent {
	return StockChangedEvent{
		EventID:   uuid.NewString(),
		ProductID: productID,
		Operation: op,
		Quantity:  quantity,
		Remaining: remaining,
		Timestamp: time.Now(),
	}
}
