package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/retry"
	"kbr-silks-backend/internal/services"
	"kbr-silks-backend/internal/supabase"
)

func noWait() services.Option {
	return services.WithRetry(retry.WithSleep(func(context.Context, time.Duration) error { return nil }))
}

type fakeDB struct {
	mu        sync.Mutex
	sarees    map[int64]models.Saree
	orders    []models.Order
	customers map[string]models.Customer
	nextID    int64
	calls     map[string]int
	journal   *[]string

	failWith map[string][]error
}

func newFakeDB(journal *[]string) *fakeDB {
	return &fakeDB{
		sarees:    map[int64]models.Saree{},
		customers: map[string]models.Customer{},
		nextID:    1,
		calls:     map[string]int{},
		failWith:  map[string][]error{},
		journal:   journal,
	}
}

// fail queues errors returned by the next calls to op.
func (f *fakeDB) fail(op string, errs ...error) {
	f.failWith[op] = append(f.failWith[op], errs...)
}

func (f *fakeDB) enter(op string) error {
	f.calls[op]++
	if f.journal != nil {
		*f.journal = append(*f.journal, op)
	}
	if q := f.failWith[op]; len(q) > 0 {
		f.failWith[op] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakeDB) seed(s models.Saree) models.Saree {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.nextID
	f.nextID++
	f.sarees[s.ID] = s
	return s
}

func (f *fakeDB) ListSarees(ctx context.Context) ([]models.Saree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListSarees"); err != nil {
		return nil, err
	}
	out := []models.Saree{}
	for id := int64(1); id < f.nextID; id++ {
		if s, ok := f.sarees[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeDB) GetSaree(ctx context.Context, id int64) (*models.Saree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSaree"); err != nil {
		return nil, err
	}
	s, ok := f.sarees[id]
	if !ok {
		return nil, fmt.Errorf("saree %d %w", id, supabase.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeDB) CreateSaree(ctx context.Context, in models.SareeInput) (*models.Saree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateSaree"); err != nil {
		return nil, err
	}
	s := models.Saree{
		ID: f.nextID, Name: in.Name, Description: in.Description, FabricType: in.FabricType,
		Color: in.Color, Price: in.Price, Stock: in.Stock, Image: in.Image,
	}
	f.nextID++
	f.sarees[s.ID] = s
	return &s, nil
}

func (f *fakeDB) UpdateSaree(ctx context.Context, id int64, in models.SareeInput) (*models.Saree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateSaree"); err != nil {
		return nil, err
	}
	if _, ok := f.sarees[id]; !ok {
		return nil, fmt.Errorf("saree %d %w", id, supabase.ErrNotFound)
	}
	s := models.Saree{
		ID: id, Name: in.Name, Description: in.Description, FabricType: in.FabricType,
		Color: in.Color, Price: in.Price, Stock: in.Stock, Image: in.Image,
	}
	f.sarees[id] = s
	return &s, nil
}

func (f *fakeDB) DeleteSaree(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteSaree"); err != nil {
		return "", err
	}
	s, ok := f.sarees[id]
	if !ok {
		return "", fmt.Errorf("saree %d %w", id, supabase.ErrNotFound)
	}
	delete(f.sarees, id)
	if s.Image == nil {
		return "", nil
	}
	return s.Image.Path, nil
}

func (f *fakeDB) PlaceOrder(ctx context.Context, in models.NewOrder) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PlaceOrder"); err != nil {
		return nil, err
	}
	for _, item := range in.Items {
		s := f.sarees[item.SareeID]
		if s.Stock < item.Quantity {
			return nil, &supabase.StockError{SareeID: item.SareeID, Available: s.Stock}
		}
		s.Stock -= item.Quantity
		f.sarees[item.SareeID] = s
	}
	o := models.Order{
		ID: int64(len(f.orders) + 1), CustomerName: in.CustomerName, CustomerPhone: in.CustomerPhone,
		Status: models.OrderPending, PaymentStatus: models.DefaultPaymentStatus, OrderDate: time.Now(),
		Items: in.Items, ProductDetails: in.ProductDetails, TotalPrice: in.Total(),
	}
	f.orders = append(f.orders, o)
	return &o, nil
}

func (f *fakeDB) ListOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListOrders"); err != nil {
		return nil, err
	}
	return append([]models.Order{}, f.orders...), nil
}

func (f *fakeDB) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetOrder"); err != nil {
		return nil, err
	}
	if id < 1 || int(id) > len(f.orders) {
		return nil, fmt.Errorf("order %d %w", id, supabase.ErrNotFound)
	}
	o := f.orders[id-1]
	return &o, nil
}

func (f *fakeDB) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateOrderStatus"); err != nil {
		return err
	}
	if id < 1 || int(id) > len(f.orders) {
		return fmt.Errorf("order %d %w", id, supabase.ErrNotFound)
	}
	f.orders[id-1].Status = status
	return nil
}

func (f *fakeDB) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdatePaymentStatus"); err != nil {
		return err
	}
	if id < 1 || int(id) > len(f.orders) {
		return fmt.Errorf("order %d %w", id, supabase.ErrNotFound)
	}
	f.orders[id-1].PaymentStatus = paymentStatus
	return nil
}

func (f *fakeDB) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListCustomers"); err != nil {
		return nil, err
	}
	out := []models.Customer{}
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeDB) GetCustomer(ctx context.Context, phone string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetCustomer"); err != nil {
		return nil, err
	}
	c, ok := f.customers[phone]
	if !ok {
		return nil, fmt.Errorf("customer %s %w", phone, supabase.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeDB) CreateCustomer(ctx context.Context, c models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateCustomer"); err != nil {
		return err
	}
	if _, ok := f.customers[c.Phone]; ok {
		return fmt.Errorf("customer with phone %s %w", c.Phone, supabase.ErrAlreadyExists)
	}
	f.customers[c.Phone] = c
	return nil
}

func (f *fakeDB) UpdateCustomer(ctx context.Context, c models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateCustomer"); err != nil {
		return err
	}
	old, ok := f.customers[c.Phone]
	if !ok {
		return fmt.Errorf("customer %s %w", c.Phone, supabase.ErrNotFound)
	}
	c.TotalOrders = old.TotalOrders
	f.customers[c.Phone] = c
	return nil
}

type upload struct {
	path        string
	size        int
	contentType string
}

type fakeImages struct {
	mu       sync.Mutex
	uploads  []upload
	deleted  []string
	attempts int
	failures []error
	journal  *[]string
}

func (f *fakeImages) UploadImage(ctx context.Context, path string, data []byte, contentType string, progress supabase.ProgressFunc) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.journal != nil {
		*f.journal = append(*f.journal, "UploadImage")
	}
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return "", err
	}
	if progress != nil {
		progress(50)
		progress(100)
	}
	f.uploads = append(f.uploads, upload{path: path, size: len(data), contentType: contentType})
	return "https://cdn.example/" + path, nil
}

func (f *fakeImages) DeleteImage(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeRoles struct {
	roles    map[string]models.Role
	attempts int
	err      error
}

func (f *fakeRoles) GetUserRole(ctx context.Context, userID string) (models.Role, error) {
	f.attempts++
	if f.err != nil {
		return models.RoleGuest, f.err
	}
	if r, ok := f.roles[userID]; ok {
		return r, nil
	}
	return models.RoleGuest, nil
}

func (f *fakeRoles) AssignRole(ctx context.Context, userID string, role models.Role) error {
	f.attempts++
	if f.err != nil {
		return f.err
	}
	f.roles[userID] = role
	return nil
}

var errUnauthorized = errors.New("Unauthorized: only admins can add sarees")

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 20, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// noisyPNG is large because noise does not compress.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Intn(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
