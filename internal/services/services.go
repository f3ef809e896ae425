// Package services is the data-access layer between the HTTP handlers and
// the Supabase backend. Every backend call goes through the retrier and
// every failure comes back translated for display.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"kbr-silks-backend/internal/errmsg"
	"kbr-silks-backend/internal/events"
	"kbr-silks-backend/internal/imaging"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/retry"
	"kbr-silks-backend/internal/supabase"
)

type SareeStore interface {
	ListSarees(ctx context.Context) ([]models.Saree, error)
	GetSaree(ctx context.Context, id int64) (*models.Saree, error)
	CreateSaree(ctx context.Context, in models.SareeInput) (*models.Saree, error)
	UpdateSaree(ctx context.Context, id int64, in models.SareeInput) (*models.Saree, error)
	DeleteSaree(ctx context.Context, id int64) (string, error)
}

type OrderStore interface {
	GetSaree(ctx context.Context, id int64) (*models.Saree, error)
	PlaceOrder(ctx context.Context, in models.NewOrder) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error
}

type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, phone string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c models.Customer) error
	UpdateCustomer(ctx context.Context, c models.Customer) error
}

type ImageStore interface {
	UploadImage(ctx context.Context, storagePath string, data []byte, contentType string, progress supabase.ProgressFunc) (string, error)
	DeleteImage(ctx context.Context, storagePath string) error
}

type RoleStore interface {
	GetUserRole(ctx context.Context, userID string) (models.Role, error)
	AssignRole(ctx context.Context, userID string, role models.Role) error
}

// ValidationError lists the offending fields. It is returned before any
// backend call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Error is a backend failure carrying the message to show the user.
type Error struct {
	Category errmsg.Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var ve *ValidationError
	var se *Error
	if errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}
	if category, ok := knownCategory(err); ok {
		return &Error{Category: category, Message: errmsg.Messages[category], Err: err}
	}

	return &Error{Category: errmsg.Classify(err), Message: errmsg.Translate(err), Err: err}
}

// knownCategory classifies errors this module raises itself, so that text
// such as a saree name never reaches the message heuristics.
func knownCategory(err error) (errmsg.Category, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errmsg.CategoryTimedOut, true
	case errors.Is(err, supabase.ErrAlreadyExists):
		return errmsg.CategoryDuplicate, true
	case errors.Is(err, supabase.ErrNotFound):
		return errmsg.CategoryNotFound, true
	}
	return errmsg.CategoryNone, false
}

func retryable(err error) bool {
	if errors.Is(err, supabase.ErrInsufficientStock) {
		return false
	}
	if category, ok := knownCategory(err); ok {
		return category == errmsg.CategoryTimedOut
	}
	return errmsg.Retryable(err)
}

type settings struct {
	retry     []retry.Option
	imaging   []imaging.Option
	publisher events.Publisher
	cache     *QueryCache
	logger    *slog.Logger
}

type Option func(*settings)

func WithRetry(opts ...retry.Option) Option {
	return func(s *settings) {
		s.retry = append(s.retry, opts...)
	}
}

func WithImaging(opts ...imaging.Option) Option {
	return func(s *settings) {
		s.imaging = append(s.imaging, opts...)
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *settings) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithCache shares one cache between services so that placing an order
// invalidates the saree list too.
func WithCache(c *QueryCache) Option {
	return func(s *settings) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		publisher: events.Nop{},
		cache:     NewQueryCache(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) retryOptions() []retry.Option {
	return append([]retry.Option{retry.WithRetryIf(retryable)}, s.retry...)
}

func call[T any](ctx context.Context, s settings, op func(ctx context.Context) (T, error)) (T, error) {
	result, err := retry.Do(ctx, op, s.retryOptions()...)
	if err != nil {
		var zero T
		return zero, translate(err)
	}
	return result, nil
}

func run(ctx context.Context, s settings, fn func(ctx context.Context) error) error {
	return translate(retry.Run(ctx, fn, s.retryOptions()...))
}

// once makes a single attempt for operations that must not be repeated.
func once[T any](ctx context.Context, op func(ctx context.Context) (T, error)) (T, error) {
	result, err := op(ctx)
	if err != nil {
		var zero T
		return zero, translate(err)
	}
	return result, nil
}

// publishTimeout bounds how long a committed mutation waits on the broker.
const publishTimeout = 3 * time.Second

// publish is best effort; the mutation has already been committed.
func (s settings) publish(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
	}
}

func requireID(id int64, what string) error {
	if id <= 0 {
		return &ValidationError{Fields: map[string]string{"id": fmt.Sprintf("%s id must be positive", what)}}
	}
	return nil
}

// StatusCode maps a service error to the HTTP status the handlers answer with.
func StatusCode(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}

	category := errmsg.CategoryGeneric
	var se *Error
	if errors.As(err, &se) {
		category = se.Category
	}

	switch category {
	case errmsg.CategoryNotAuthorized:
		return http.StatusForbidden
	case errmsg.CategoryNotFound:
		return http.StatusNotFound
	case errmsg.CategoryDuplicate:
		return http.StatusConflict
	case errmsg.CategoryImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case errmsg.CategoryTimedOut:
		return http.StatusGatewayTimeout
	case errmsg.CategoryNetwork, errmsg.CategoryUploadNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
