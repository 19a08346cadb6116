package logkey

// Keys used for structured logging across the service.
const (
	TraceID       = "Trace ID"
	ERROR         = "Error"
	OrderID       = "OrderID"
	ProductID     = "ProductID"
	VariationID   = "VariationID"
	ReservationID = "ReservationID"
	CustomerID    = "CustomerID"
	Status        = "Status"
)
