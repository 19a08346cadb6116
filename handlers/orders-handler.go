package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/inventory"
	"storefront-service/internal/orders"
	"storefront-service/internal/stores/kafka"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

// CheckoutRequest is the wire shape of a checkout. The payer is discriminated:
// either customer_id or guest, never both.
type CheckoutRequest struct {
	CustomerID *int64                 `json:"customer_id"`
	Guest      *orders.GuestProfile   `json:"guest"`
	Items      []orders.RequestedItem `json:"items" validate:"required,min=1"`
}

func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	// Checkout payloads are small; anything bigger is malformed or abusive.
	if c.Request.ContentLength > 10*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId),
			slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "items is required and must not be empty"})
		return
	}

	payer := orders.Payer{CustomerID: req.CustomerID, Guest: req.Guest}
	order, err := h.o.PlaceOrder(c.Request.Context(), payer, req.Items)
	if err != nil {
		h.countRejection(err)
		status, body := orderErrorResponse(err)
		slog.Error("checkout rejected", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(status, body)
		return
	}

	h.m.OrdersPlaced.Inc()
	h.publishOrderPlaced(order, traceId)

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.o.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		slog.Error("error in retrieving order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	page, limit, ok := paginationParams(c)
	if !ok {
		return
	}

	filter := orders.ListFilter{Limit: limit, Offset: (page - 1) * limit}
	if s := c.Query("status"); s != "" {
		status, valid := orders.ParseStatus(s)
		if !valid {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status parameter"})
			return
		}
		filter.Status = &status
	}
	if s := c.Query("customer_id"); s != "" {
		customerID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid customer_id parameter"})
			return
		}
		filter.CustomerID = &customerID
	}

	summaries, total, err := h.o.ListOrders(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error in listing orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, paginated(summaries, total, page, limit))
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}
	next, valid := orders.ParseStatus(req.Status)
	if !valid {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	order, err := h.o.TransitionStatus(c.Request.Context(), orderID, next)
	if err != nil {
		status, body := orderErrorResponse(err)
		slog.Error("status transition rejected", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(status, body)
		return
	}

	if next == orders.StatusCancelled {
		h.m.OrdersCancelled.Inc()
	}
	h.publishStatusChanged(order, traceId)

	slog.Info("order status updated", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, orderID), slog.String(logkey.Status, string(order.Status)))
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	if err := h.o.DeleteOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		slog.Error("error in deleting order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Order deletion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order successfully deleted", "deleted_order_id": orderID})
}

// orderErrorResponse maps domain errors to stable kinds so clients can tell
// "fix the request" apart from "retry with different items".
func orderErrorResponse(err error) (int, gin.H) {
	var (
		lineErr      *orders.InvalidLineItemError
		productErr   *orders.UnknownProductError
		variationErr *orders.UnknownVariationError
		stockErr     *inventory.InsufficientStockError
	)
	switch {
	case errors.Is(err, orders.ErrEmptyOrder), errors.As(err, &lineErr):
		return http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_line_item"}
	case errors.Is(err, orders.ErrInvalidPayer):
		return http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_payer"}
	case errors.As(err, &productErr):
		return http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "unknown_product", "product_id": productErr.ProductID}
	case errors.As(err, &variationErr):
		return http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "unknown_variation", "variation_id": variationErr.VariationID}
	case errors.As(err, &stockErr):
		return http.StatusConflict, gin.H{"error": err.Error(), "kind": "insufficient_stock", "target": stockErr.Target.String()}
	case errors.Is(err, orders.ErrIllegalTransition):
		return http.StatusConflict, gin.H{"error": err.Error(), "kind": "illegal_transition"}
	case errors.Is(err, inventory.ErrAlreadyReleased):
		return http.StatusConflict, gin.H{"error": err.Error(), "kind": "already_released"}
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": "Order not found", "kind": "not_found"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Internal error", "kind": "persistence_failure"}
	}
}

func (h *Handler) countRejection(err error) {
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		h.m.StockConflicts.Inc()
		h.m.OrdersRejected.WithLabelValues("insufficient_stock").Inc()
	case errors.Is(err, orders.ErrInvalidPayer):
		h.m.OrdersRejected.WithLabelValues("invalid_payer").Inc()
	case errors.Is(err, orders.ErrPersistence):
		h.m.OrdersRejected.WithLabelValues("persistence").Inc()
	default:
		h.m.OrdersRejected.WithLabelValues("validation").Inc()
	}
}

// publishOrderPlaced emits the order-placed event without blocking the response.
func (h *Handler) publishOrderPlaced(order orders.Order, traceId string) {
	if h.k == nil {
		return
	}
	go func() {
		event := kafka.OrderPlacedEvent{
			OrderID:    order.ID,
			TotalCents: order.TotalAmount.MinorUnits(),
			ItemsCount: len(order.Items),
			GuestOrder: order.Payer.Guest != nil,
			CustomerID: order.Payer.CustomerID,
			CreatedAt:  order.CreatedAt,
		}
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal order placed event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderPlaced, []byte(order.ID), data); err != nil {
			slog.Error("failed to produce order placed event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}

func (h *Handler) publishStatusChanged(order orders.Order, traceId string) {
	if h.k == nil {
		return
	}
	go func() {
		event := kafka.OrderStatusChangedEvent{
			OrderID:   order.ID,
			To:        string(order.Status),
			ChangedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal status changed event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderStatusChanged, []byte(order.ID), data); err != nil {
			slog.Error("failed to produce status changed event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}
