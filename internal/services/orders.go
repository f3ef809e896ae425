package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kbr-silks-backend/internal/events"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/supabase"
)

type OrderService struct {
	db       OrderStore
	settings settings
}

func NewOrderService(db OrderStore, opts ...Option) *OrderService {
	return &OrderService{db: db, settings: newSettings(opts)}
}

// OrderReference is the number quoted to the customer.
func OrderReference(id int64) string {
	return fmt.Sprintf("KBR-%06d", id)
}

// Place records a storefront order for one saree. The snapshot is taken from
// the saree as stored, not from the request. The insert runs once.
func (s *OrderService) Place(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if err := ValidateOrder(req); err != nil {
		return nil, err
	}

	saree, err := call(ctx, s.settings, func(ctx context.Context) (*models.Saree, error) {
		return s.db.GetSaree(ctx, req.SareeID)
	})
	if err != nil {
		return nil, err
	}
	if err := validateStock(req.Quantity, saree.Stock); err != nil {
		return nil, err
	}

	in := models.NewOrder{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Items:         []models.OrderedItem{{SareeID: saree.ID, Quantity: req.Quantity}},
		ProductDetails: []models.ProductDetail{{
			Name:       saree.Name,
			FabricType: saree.FabricType,
			Color:      saree.Color,
			UnitPrice:  saree.Price,
			Quantity:   req.Quantity,
		}},
	}

	order, err := once(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.db.PlaceOrder(ctx, in)
	})
	var stockErr *supabase.StockError
	if errors.As(err, &stockErr) {
		// Another order took the stock after it was read above.
		s.settings.cache.Invalidate(SareesKey)
		return nil, &ValidationError{Fields: map[string]string{
			"quantity": fmt.Sprintf("Only %d in stock.", stockErr.Available),
		}}
	}
	if err != nil {
		return nil, err
	}

	s.settings.cache.Invalidate(OrdersKey, SareesKey, CustomersKey)
	s.settings.publish(ctx, events.OrderPlacedEvent(*order))
	s.settings.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID, "saree_id", saree.ID, "quantity", req.Quantity, "total", order.TotalPrice)

	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, map[models.OrderStatus]int, error) {
	orders, err := cached(ctx, s.settings.cache, OrdersKey, OrdersTTL, func(ctx context.Context) ([]models.Order, error) {
		return call(ctx, s.settings, s.db.ListOrders)
	})
	if err != nil {
		return nil, nil, err
	}
	return orders, StatusCounts(orders), nil
}

// StatusCounts tallies orders per status, including statuses with none.
func StatusCounts(orders []models.Order) map[models.OrderStatus]int {
	counts := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	for _, st := range models.OrderStatuses {
		counts[st] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	if err := requireID(id, "order"); err != nil {
		return nil, err
	}
	return call(ctx, s.settings, func(ctx context.Context) (*models.Order, error) {
		return s.db.GetOrder(ctx, id)
	})
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if err := requireID(id, "order"); err != nil {
		return err
	}
	if err := validateOrderStatus(status); err != nil {
		return err
	}

	err := run(ctx, s.settings, func(ctx context.Context) error {
		return s.db.UpdateOrderStatus(ctx, id, status)
	})
	if err != nil {
		return err
	}

	s.settings.cache.Invalidate(OrdersKey)
	s.settings.publish(ctx, events.OrderStatusChangedEvent(id, status))
	s.settings.logger.InfoContext(ctx, "order status updated", "order_id", id, "status", status)
	return nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	if err := requireID(id, "order"); err != nil {
		return err
	}
	if err := validatePaymentStatus(paymentStatus); err != nil {
		return err
	}
	paymentStatus = strings.TrimSpace(paymentStatus)

	err := run(ctx, s.settings, func(ctx context.Context) error {
		return s.db.UpdatePaymentStatus(ctx, id, paymentStatus)
	})
	if err != nil {
		return err
	}

	s.settings.cache.Invalidate(OrdersKey)
	s.settings.publish(ctx, events.PaymentStatusChangedEvent(id, paymentStatus))
	s.settings.logger.InfoContext(ctx, "payment status updated", "order_id", id, "payment_status", paymentStatus)
	return nil
}
