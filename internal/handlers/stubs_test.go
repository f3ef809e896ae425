package handlers_test

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"kbr-silks-backend/internal/admingate"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/errmsg"
	"kbr-silks-backend/internal/handlers"
	"kbr-silks-backend/internal/middleware"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/services"
)

type stubSarees struct {
	sarees    []models.Saree
	err       error
	lastInput models.SareeInput
	lastImage []byte
	filter    services.CatalogFilter
	deleted   []int64
}

func (s *stubSarees) List(ctx context.Context) ([]models.Saree, error) { return s.sarees, s.err }

func (s *stubSarees) Get(ctx context.Context, id int64) (*models.Saree, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, saree := range s.sarees {
		if saree.ID == id {
			return &saree, nil
		}
	}
	return nil, &services.Error{Category: errmsg.CategoryNotFound, Message: errmsg.Messages[errmsg.CategoryNotFound]}
}

func (s *stubSarees) Browse(ctx context.Context, f services.CatalogFilter) ([]models.Saree, error) {
	s.filter = f
	if s.err != nil {
		return nil, s.err
	}
	return services.FilterSarees(s.sarees, f), nil
}

func (s *stubSarees) Featured(ctx context.Context) ([]models.Saree, error) {
	return services.Featured(s.sarees), s.err
}

func (s *stubSarees) Bridal(ctx context.Context) ([]models.Saree, error) {
	return services.Bridal(s.sarees), s.err
}

func (s *stubSarees) Add(ctx context.Context, in models.SareeInput, image []byte) (*services.SavedSaree, error) {
	s.lastInput, s.lastImage = in, image
	if s.err != nil {
		return nil, s.err
	}
	return &services.SavedSaree{
		Saree: models.Saree{ID: 10, Name: in.Name, Price: in.Price, Stock: in.Stock},
		Image: &models.ImageStats{OriginalSize: "5.00 MB", CompressedSize: "1.20 MB", WasCompressed: true},
	}, nil
}

func (s *stubSarees) Update(ctx context.Context, id int64, in models.SareeInput, image []byte) (*services.SavedSaree, error) {
	s.lastInput, s.lastImage = in, image
	if s.err != nil {
		return nil, s.err
	}
	return &services.SavedSaree{Saree: models.Saree{ID: id, Name: in.Name}}, nil
}

func (s *stubSarees) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

type stubOrders struct {
	placed  []models.PlaceOrderRequest
	orders  []models.Order
	err     error
	status  models.OrderStatus
	payment string
}

func (s *stubOrders) Place(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.placed = append(s.placed, req)
	return &models.Order{ID: 42, TotalPrice: 15000 * req.Quantity}, nil
}

func (s *stubOrders) List(ctx context.Context) ([]models.Order, map[models.OrderStatus]int, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.orders, services.StatusCounts(s.orders), nil
}

func (s *stubOrders) Get(ctx context.Context, id int64) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: id}, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	s.status = status
	return s.err
}

func (s *stubOrders) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	s.payment = paymentStatus
	return s.err
}

type stubCustomers struct {
	customers []models.Customer
	err       error
	updated   string
}

func (s *stubCustomers) List(ctx context.Context) ([]models.Customer, error) { return s.customers, s.err }

func (s *stubCustomers) Get(ctx context.Context, phone string) (*models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Customer{Phone: phone}, nil
}

func (s *stubCustomers) Add(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Customer{Phone: req.Phone, Name: req.Name, Address: req.Address}, nil
}

func (s *stubCustomers) Update(ctx context.Context, originalPhone string, req models.CustomerRequest) (*models.Customer, error) {
	s.updated = originalPhone
	if s.err != nil {
		return nil, s.err
	}
	return &models.Customer{Phone: originalPhone, Name: req.Name}, nil
}

type stubRoles struct {
	roles    map[string]models.Role
	err      error
	assigned map[string]models.Role
}

func (s *stubRoles) Role(ctx context.Context, userID string) (models.Role, error) {
	if s.err != nil {
		return models.RoleGuest, s.err
	}
	if r, ok := s.roles[userID]; ok {
		return r, nil
	}
	return models.RoleGuest, nil
}

func (s *stubRoles) IsAdmin(ctx context.Context, userID string) (bool, error) {
	r, err := s.Role(ctx, userID)
	return r == models.RoleAdmin, err
}

func (s *stubRoles) Assign(ctx context.Context, userID string, role models.Role) error {
	if s.err != nil {
		return s.err
	}
	if s.assigned == nil {
		s.assigned = map[string]models.Role{}
	}
	s.assigned[userID] = role
	return nil
}

const testJWTSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

type testServer struct {
	router    *gin.Engine
	sarees    *stubSarees
	orders    *stubOrders
	customers *stubCustomers
	roles     *stubRoles
}

func newTestServer(t *testing.T, requireIdentity bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SupabaseJWTSecret:    testJWTSecret,
		SessionKey:           []byte("0123456789abcdef0123456789abcdef"),
		RequireIdentity:      requireIdentity,
		BusinessPhone:        "9573147399",
		BusinessPhoneDisplay: "+91 95731 47399",
		WhatsAppNumber:       "919573147399",
		WhatsAppGreeting:     "Hello KBR Silks",
	}
	policy, err := admingate.NewPolicy([]string{"9573147399", "7981314611"}, "silk-secret")
	require.NoError(t, err)

	s := &testServer{
		sarees:    &stubSarees{},
		orders:    &stubOrders{},
		customers: &stubCustomers{},
		roles:     &stubRoles{roles: map[string]models.Role{}},
	}
	s.router = handlers.NewRouter(handlers.RouterDeps{
		Config:    cfg,
		Sessions:  middleware.NewSessionStore(cfg),
		Policy:    policy,
		Sarees:    s.sarees,
		Orders:    s.orders,
		Customers: s.customers,
		Roles:     s.roles,
		Admins:    s.roles,
	})
	return s
}
