package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"kbr-silks-backend/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError reports how many units were left when an order line could not
// be filled.
type StockError struct {
	SareeID   int64
	Available int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%v: only %d left for saree %d", ErrInsufficientStock, e.Available, e.SareeID)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

const uniqueViolation = "23505"

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an already opened pool.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const sareeColumns = `id, name, description, fabric_type, color, price, stock, image_path, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSaree(row rowScanner) (*models.Saree, error) {
	var s models.Saree
	var imagePath, imageURL sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.FabricType, &s.Color,
		&s.Price, &s.Stock, &imagePath, &imageURL, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid && imageURL.String != "" {
		s.Image = &models.ImageRef{Path: imagePath.String, URL: imageURL.String}
	}
	return &s, nil
}

func imageColumns(img *models.ImageRef) (sql.NullString, sql.NullString) {
	if img == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: img.Path, Valid: img.Path != ""},
		sql.NullString{String: img.URL, Valid: img.URL != ""}
}

func (d *DatabaseClient) ListSarees(ctx context.Context) ([]models.Saree, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+sareeColumns+`
		FROM sarees
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sarees: %w", err)
	}
	defer rows.Close()

	sarees := []models.Saree{}
	for rows.Next() {
		s, err := scanSaree(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saree: %w", err)
		}
		sarees = append(sarees, *s)
	}

	return sarees, rows.Err()
}

func (d *DatabaseClient) GetSaree(ctx context.Context, id int64) (*models.Saree, error) {
	s, err := scanSaree(d.db.QueryRowContext(ctx, `
		SELECT `+sareeColumns+`
		FROM sarees
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("saree %d %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saree: %w", err)
	}
	return s, nil
}

func (d *DatabaseClient) CreateSaree(ctx context.Context, in models.SareeInput) (*models.Saree, error) {
	imagePath, imageURL := imageColumns(in.Image)
	s, err := scanSaree(d.db.QueryRowContext(ctx, `
		INSERT INTO sarees (name, description, fabric_type, color, price, stock, image_path, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+sareeColumns,
		in.Name, in.Description, in.FabricType, in.Color, in.Price, in.Stock, imagePath, imageURL,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("a saree named %q %w", in.Name, ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create saree: %w", err)
	}
	return s, nil
}

func (d *DatabaseClient) UpdateSaree(ctx context.Context, id int64, in models.SareeInput) (*models.Saree, error) {
	imagePath, imageURL := imageColumns(in.Image)
	s, err := scanSaree(d.db.QueryRowContext(ctx, `
		UPDATE sarees
		SET name = $1, description = $2, fabric_type = $3, color = $4, price = $5, stock = $6,
			image_path = $7, image_url = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+sareeColumns,
		in.Name, in.Description, in.FabricType, in.Color, in.Price, in.Stock, imagePath, imageURL, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("saree %d %w", id, ErrNotFound)
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("a saree named %q %w", in.Name, ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update saree: %w", err)
	}
	return s, nil
}

// DeleteSaree removes the saree and returns the storage path of its image, if any.
func (d *DatabaseClient) DeleteSaree(ctx context.Context, id int64) (string, error) {
	var imagePath sql.NullString
	err := d.db.QueryRowContext(ctx, `
		DELETE FROM sarees
		WHERE id = $1
		RETURNING image_path
	`, id).Scan(&imagePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("saree %d %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete saree: %w", err)
	}
	return imagePath.String, nil
}

// PlaceOrder decrements stock for every line and records the order with its
// product snapshots in one transaction.
func (d *DatabaseClient) PlaceOrder(ctx context.Context, in models.NewOrder) (*models.Order, error) {
	if len(in.Items) == 0 || len(in.Items) != len(in.ProductDetails) {
		return nil, fmt.Errorf("failed to place order: items and product details do not match")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range in.Items {
		var stock int64
		err := tx.QueryRowContext(ctx, `SELECT stock FROM sarees WHERE id = $1 FOR UPDATE`, item.SareeID).Scan(&stock)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("saree %d %w", item.SareeID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stock: %w", err)
		}
		if stock < item.Quantity {
			return nil, &StockError{SareeID: item.SareeID, Available: stock}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE sarees SET stock = stock - $1, updated_at = NOW() WHERE id = $2`, item.Quantity, item.SareeID); err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
	}

	order := models.Order{
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		Items:          in.Items,
		ProductDetails: in.ProductDetails,
		TotalPrice:     in.Total(),
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, customer_phone, total_price)
		VALUES ($1, $2, $3)
		RETURNING id, status, payment_status, order_date
	`, in.CustomerName, in.CustomerPhone, order.TotalPrice).Scan(&order.ID, &order.Status, &order.PaymentStatus, &order.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i, item := range in.Items {
		detail := in.ProductDetails[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, saree_id, quantity, name, fabric_type, color, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, order.ID, item.SareeID, item.Quantity, detail.Name, detail.FabricType, detail.Color, detail.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE customers SET total_orders = total_orders + 1 WHERE phone = $1
	`, in.CustomerPhone); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &order, nil
}

const orderColumns = `id, customer_name, customer_phone, status, payment_status, order_date, total_price`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.Status, &o.PaymentStatus, &o.OrderDate, &o.TotalPrice); err != nil {
		return nil, err
	}
	o.Items = []models.OrderedItem{}
	o.ProductDetails = []models.ProductDetail{}
	return &o, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY order_date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	index := make(map[int64]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := d.db.QueryContext(ctx, `
		SELECT order_id, saree_id, quantity, name, fabric_type, color, unit_price
		FROM order_items
		ORDER BY order_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var item models.OrderedItem
		var detail models.ProductDetail
		if err := itemRows.Scan(&orderID, &item.SareeID, &item.Quantity, &detail.Name, &detail.FabricType, &detail.Color, &detail.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		i, ok := index[orderID]
		if !ok {
			continue
		}
		detail.Quantity = item.Quantity
		orders[i].Items = append(orders[i].Items, item)
		orders[i].ProductDetails = append(orders[i].ProductDetails, detail)
	}

	return orders, itemRows.Err()
}

func (d *DatabaseClient) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(d.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT saree_id, quantity, name, fabric_type, color, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderedItem
		var detail models.ProductDetail
		if err := rows.Scan(&item.SareeID, &item.Quantity, &detail.Name, &detail.FabricType, &detail.Color, &detail.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		detail.Quantity = item.Quantity
		o.Items = append(o.Items, item)
		o.ProductDetails = append(o.ProductDetails, detail)
	}

	return o, rows.Err()
}

func (d *DatabaseClient) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return d.updateOrder(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, id, string(status))
}

func (d *DatabaseClient) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	return d.updateOrder(ctx, `UPDATE orders SET payment_status = $1 WHERE id = $2`, id, paymentStatus)
}

func (d *DatabaseClient) updateOrder(ctx context.Context, query string, id int64, value string) error {
	res, err := d.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %d %w", id, ErrNotFound)
	}
	return nil
}

const customerColumns = `phone, name, email, address, total_orders`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	var email sql.NullString
	if err := row.Scan(&c.Phone, &c.Name, &email, &c.Address, &c.TotalOrders); err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	return &c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (d *DatabaseClient) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	return customers, rows.Err()
}

func (d *DatabaseClient) GetCustomer(ctx context.Context, phone string) (*models.Customer, error) {
	c, err := scanCustomer(d.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE phone = $1
	`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s %w", phone, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (d *DatabaseClient) CreateCustomer(ctx context.Context, c models.Customer) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO customers (phone, name, email, address)
		VALUES ($1, $2, $3, $4)
	`, c.Phone, c.Name, nullString(c.Email), c.Address)
	if isUniqueViolation(err) {
		return fmt.Errorf("customer with phone %s %w", c.Phone, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// UpdateCustomer edits the customer keyed by phone; the phone itself never changes.
func (d *DatabaseClient) UpdateCustomer(ctx context.Context, c models.Customer) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $1, email = $2, address = $3, updated_at = $4
		WHERE phone = $5
	`, c.Name, nullString(c.Email), c.Address, time.Now().UTC(), c.Phone)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("customer %s %w", c.Phone, ErrNotFound)
	}
	return nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
