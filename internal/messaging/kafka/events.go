package kafka

import "time"

// EventType определяет тип события магазина.
type EventType string

const (
	// События заказов
	EventTypeOrderCreated EventType = "order.created"

	// События склада
	EventTypeStockConsumed EventType = "stock.consumed"
	EventTypeStockRestored EventType = "stock.restored"

	// События оформления
	EventTypeCheckoutFailed EventType = "checkout.failed"
)

// Topics для Kafka.
const (
	TopicOrderEvents = "bookstore.order.events"
	TopicStockEvents = "bookstore.stock.events"
)

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    int64                  `json:"order_id"`
	CustomerID int64                  `json:"customer_id"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent представляет изменение складского остатка.
type StockEvent struct {
	EventType EventType `json:"event_type"`
	BookID    int64     `json:"book_id"`
	Qty       int32     `json:"qty"`
	Left      int32     `json:"left"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, customerID, totalMinor int64, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		TotalMinor: totalMinor,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}

// NewStockEvent создает новое складское событие.
func NewStockEvent(eventType EventType, bookID int64, qty, left int32) *StockEvent {
	return &StockEvent{
		EventType: eventType,
		BookID:    bookID,
		Qty:       qty,
		Left:      left,
		Timestamp: time.Now(),
	}
}
