package orders

import "time"

const (
	EventsQueue        = "orders.events"
	EventCreated       = "order_created"
	EventStatusChanged = "order_status_changed"
)

type OrderEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	Email       string    `json:"email,omitempty"`
	Status      Status    `json:"status"`
	TotalAmount int64     `json:"total_amount"`
	Fallback    bool      `json:"fallback,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
