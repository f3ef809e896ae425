package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/services"
)

type OrderManager interface {
	Place(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, map[models.OrderStatus]int, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error
}

type OrdersHandler struct {
	orders OrderManager
}

func NewOrdersHandler(orders OrderManager) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// PlaceOrder godoc
// @Summary     Place an order
// @Description Orders one saree. The price and details are taken from the catalog at order time.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.PlaceOrderRequest true "Order"
// @Success     201 {object} models.PlaceOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	order, err := h.orders.Place(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PlaceOrderResponse{
		OrderID:    order.ID,
		Reference:  services.OrderReference(order.ID),
		TotalPrice: order.TotalPrice,
	})
}

// ListOrders godoc
// @Summary     List orders
// @Description All orders, newest first, with a count per status
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	orders, counts, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OrderListResponse{Orders: orders, StatusCounts: counts})
}

// GetOrder godoc
// @Summary     Get an order
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Order ID"
// @Success     200 {object} models.Order
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus godoc
// @Summary     Change an order's status
// @Tags        admin
// @Accept      json
// @Security    Bearer
// @Param       id      path int                             true "Order ID"
// @Param       request body models.UpdateOrderStatusRequest true "New status"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/orders/{id}/status [patch]
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePaymentStatus godoc
// @Summary     Change an order's payment status
// @Tags        admin
// @Accept      json
// @Security    Bearer
// @Param       id      path int                               true "Order ID"
// @Param       request body models.UpdatePaymentStatusRequest true "New payment status"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/orders/{id}/payment [patch]
func (h *OrdersHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if err := h.orders.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
