// Package events publishes storefront activity (orders placed, status
// changes, catalog edits) for downstream consumers such as notification or
// accounting jobs.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"kbr-silks-backend/internal/models"
)

type Type string

const (
	OrderPlaced          Type = "order.placed"
	OrderStatusChanged   Type = "order.status_changed"
	PaymentStatusChanged Type = "order.payment_status_changed"
	SareeAdded           Type = "saree.added"
	SareeUpdated         Type = "saree.updated"
	SareeDeleted         Type = "saree.deleted"
	CustomerAdded        Type = "customer.added"
)

type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

func newEvent(t Type, key string, payload map[string]any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func OrderPlacedEvent(order models.Order) Event {
	return newEvent(OrderPlaced, orderKey(order.ID), map[string]any{
		"order_id":       order.ID,
		"customer_name":  order.CustomerName,
		"customer_phone": order.CustomerPhone,
		"total_price":    order.TotalPrice,
		"items":          order.ProductDetails,
	})
}

func OrderStatusChangedEvent(orderID int64, status models.OrderStatus) Event {
	return newEvent(OrderStatusChanged, orderKey(orderID), map[string]any{
		"order_id": orderID,
		"status":   status,
	})
}

func PaymentStatusChangedEvent(orderID int64, paymentStatus string) Event {
	return newEvent(PaymentStatusChanged, orderKey(orderID), map[string]any{
		"order_id":       orderID,
		"payment_status": paymentStatus,
	})
}

func SareeSavedEvent(t Type, saree models.Saree) Event {
	payload := map[string]any{
		"saree_id":    saree.ID,
		"name":        saree.Name,
		"fabric_type": saree.FabricType,
		"price":       saree.Price,
		"stock":       saree.Stock,
	}
	if saree.Image != nil {
		payload["image_url"] = saree.Image.URL
	}
	return newEvent(t, sareeKey(saree.ID), payload)
}

func SareeDeletedEvent(id int64) Event {
	return newEvent(SareeDeleted, sareeKey(id), map[string]any{"saree_id": id})
}

func CustomerAddedEvent(customer models.Customer) Event {
	return newEvent(CustomerAdded, "customer:"+customer.Phone, map[string]any{
		"phone": customer.Phone,
		"name":  customer.Name,
	})
}

func orderKey(id int64) string {
	return "order:" + itoa(id)
}

func sareeKey(id int64) string {
	return "saree:" + itoa(id)
}
