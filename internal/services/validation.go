package services

import (
	"fmt"
	"regexp"
	"strings"

	"kbr-silks-backend/internal/models"
)

var (
	orderPhonePattern    = regexp.MustCompile(`^\d{10}$`)
	customerPhonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{7,15}$`)
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const maxPaymentStatusLen = 32

type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateSaree checks the editable fields. An image is required only when
// the saree has none yet.
func ValidateSaree(in models.SareeInput, hasImage bool) error {
	errs := fieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(in.Color) == "" {
		errs["color"] = "Color is required"
	}
	if !in.FabricType.Valid() {
		errs["fabric_type"] = "Fabric must be Kanjivaram, Banarasi or Mysore"
	}
	if in.Price <= 0 {
		errs["price"] = "Valid price required"
	}
	if in.Stock < 0 {
		errs["stock"] = "Valid stock required"
	}
	if !hasImage {
		errs["image"] = "Image is required for new sarees"
	}
	return errs.err()
}

// ValidateOrder checks the storefront order form. Stock is checked later
// against the saree as stored.
func ValidateOrder(req models.PlaceOrderRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(req.CustomerName) == "" {
		errs["customer_name"] = "Customer name is required."
	}
	phone := strings.TrimSpace(req.CustomerPhone)
	switch {
	case phone == "":
		errs["customer_phone"] = "Phone number is required."
	case !orderPhonePattern.MatchString(phone):
		errs["customer_phone"] = "Enter a valid 10-digit phone number."
	}
	if req.SareeID <= 0 {
		errs["saree_id"] = "Saree is required."
	}
	if req.Quantity < 1 {
		errs["quantity"] = "Quantity must be at least 1."
	}
	return errs.err()
}

func validateStock(quantity, stock int64) error {
	if quantity > stock {
		return &ValidationError{Fields: map[string]string{"quantity": fmt.Sprintf("Only %d in stock.", stock)}}
	}
	return nil
}

func ValidateCustomer(req models.CustomerRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required"
	}
	phone := strings.TrimSpace(req.Phone)
	switch {
	case phone == "":
		errs["phone"] = "Phone is required"
	case !customerPhonePattern.MatchString(phone):
		errs["phone"] = "Enter a valid phone number"
	}
	if strings.TrimSpace(req.Address) == "" {
		errs["address"] = "Address is required"
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		errs["email"] = "Enter a valid email"
	}
	return errs.err()
}

func validateOrderStatus(status models.OrderStatus) error {
	if !status.Valid() {
		return &ValidationError{Fields: map[string]string{"status": "Status must be Pending, Confirmed, Shipped or Delivered"}}
	}
	return nil
}

func validatePaymentStatus(paymentStatus string) error {
	ps := strings.TrimSpace(paymentStatus)
	if ps == "" {
		return &ValidationError{Fields: map[string]string{"payment_status": "Payment status is required"}}
	}
	if len(ps) > maxPaymentStatusLen {
		return &ValidationError{Fields: map[string]string{"payment_status": fmt.Sprintf("Payment status must be at most %d characters", maxPaymentStatusLen)}}
	}
	return nil
}
