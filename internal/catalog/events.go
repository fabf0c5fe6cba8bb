package catalog

import "time"

const (
	EventsQueue  = "products.events"
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	Fallback  bool      `json:"fallback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
