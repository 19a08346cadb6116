package kafka

import "time"

const (
	TopicOrderPlaced        = `order-service.order-placed`
	TopicOrderStatusChanged = `order-service.order-status-changed`
)

// OrderPlacedEvent is published after a checkout commits.
type OrderPlacedEvent struct {
	OrderID    string    `json:"order_id"`
	TotalCents int64     `json:"total_cents"`
	ItemsCount int       `json:"items_count"`
	GuestOrder bool      `json:"guest_order"`
	CustomerID *int64    `json:"customer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderStatusChangedEvent is published after a successful status transition.
type OrderStatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}
