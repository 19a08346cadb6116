package orders

import (
	"time"

	"storefront-service/pkg/money"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// transitions is the full table of legal status changes. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GuestProfile captures the payer identity for a guest checkout. Every field
// is required.
type GuestProfile struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Payer is a tagged union: exactly one of CustomerID or Guest is set.
type Payer struct {
	CustomerID *int64        `json:"customer_id,omitempty"`
	Guest      *GuestProfile `json:"guest,omitempty"`
}

// RegisteredPayer builds the registered-customer form of the union.
func RegisteredPayer(customerID int64) Payer {
	return Payer{CustomerID: &customerID}
}

// GuestPayer builds the guest form of the union.
func GuestPayer(profile GuestProfile) Payer {
	return Payer{Guest: &profile}
}

// RequestedItem is one line of a checkout request. Price, if submitted, is
// ignored: the pricing engine decides what each unit costs.
type RequestedItem struct {
	ProductID   int64         `json:"product_id"`
	VariationID *int64        `json:"variation_id,omitempty"`
	Quantity    int           `json:"quantity"`
	Price       *money.Amount `json:"price,omitempty"`
}

// OrderItem is a persisted order line. Unit price and the variation
// attribute pair are snapshotted at order time; later catalog changes never
// touch them.
type OrderItem struct {
	ID             int64        `json:"order_item_id"`
	OrderID        string       `json:"order_id"`
	ProductID      int64        `json:"product_id"`
	ProductName    string       `json:"product_name"`
	VariationID    *int64       `json:"variation_id,omitempty"`
	VariationName  string       `json:"variation_name,omitempty"`
	VariationValue string       `json:"variation_value,omitempty"`
	Quantity       int          `json:"quantity"`
	UnitPrice      money.Amount `json:"price"`
}

// LineTotal is the exact minor-unit total for this line.
func (i OrderItem) LineTotal() money.Amount {
	return i.UnitPrice.Mul(i.Quantity)
}

// Order owns its items; they live and die with it.
type Order struct {
	ID            string       `json:"order_id"`
	Payer         Payer        `json:"payer"`
	Items         []OrderItem  `json:"items"`
	TotalAmount   money.Amount `json:"total_amount"`
	Status        Status       `json:"status"`
	ReservationID string       `json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Summary is the reduced projection used by order listings.
type Summary struct {
	ID          string       `json:"order_id"`
	CustomerID  *int64       `json:"customer_id,omitempty"`
	GuestName   string       `json:"guest_name,omitempty"`
	GuestEmail  string       `json:"guest_email,omitempty"`
	TotalAmount money.Amount `json:"total_amount"`
	Status      Status       `json:"status"`
	ItemsCount  int          `json:"items_count"`
	CreatedAt   time.Time    `json:"created_at"`
}
