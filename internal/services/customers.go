package services

import (
	"context"
	"strings"

	"kbr-silks-backend/internal/events"
	"kbr-silks-backend/internal/models"
)

type CustomerService struct {
	db       CustomerStore
	settings settings
}

func NewCustomerService(db CustomerStore, opts ...Option) *CustomerService {
	return &CustomerService{db: db, settings: newSettings(opts)}
}

func customerFromRequest(req models.CustomerRequest) models.Customer {
	c := models.Customer{
		Phone:   strings.TrimSpace(req.Phone),
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		c.Email = &email
	}
	return c
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return cached(ctx, s.settings.cache, CustomersKey, CustomersTTL, func(ctx context.Context) ([]models.Customer, error) {
		return call(ctx, s.settings, s.db.ListCustomers)
	})
}

func (s *CustomerService) Get(ctx context.Context, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, &ValidationError{Fields: map[string]string{"phone": "Phone is required"}}
	}
	return call(ctx, s.settings, func(ctx context.Context) (*models.Customer, error) {
		return s.db.GetCustomer(ctx, phone)
	})
}

func (s *CustomerService) Add(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	if err := ValidateCustomer(req); err != nil {
		return nil, err
	}
	c := customerFromRequest(req)

	if _, err := once(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.db.CreateCustomer(ctx, c)
	}); err != nil {
		return nil, err
	}

	s.settings.cache.Invalidate(CustomersKey)
	s.settings.publish(ctx, events.CustomerAddedEvent(c))
	s.settings.logger.InfoContext(ctx, "customer added", "phone", c.Phone)
	return &c, nil
}

// Update edits the customer identified by originalPhone. The phone number
// is the key and cannot be changed.
func (s *CustomerService) Update(ctx context.Context, originalPhone string, req models.CustomerRequest) (*models.Customer, error) {
	originalPhone = strings.TrimSpace(originalPhone)
	if strings.TrimSpace(req.Phone) == "" {
		req.Phone = originalPhone
	}
	if err := ValidateCustomer(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Phone) != originalPhone {
		return nil, &ValidationError{Fields: map[string]string{"phone": "Phone number cannot be changed"}}
	}
	c := customerFromRequest(req)

	err := run(ctx, s.settings, func(ctx context.Context) error {
		return s.db.UpdateCustomer(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.settings.cache.Invalidate(CustomersKey)
	s.settings.logger.InfoContext(ctx, "customer updated", "phone", c.Phone)
	return &c, nil
}
