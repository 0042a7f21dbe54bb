package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/allbirds/storefront/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage describes persistence for orders. Mutations that feed a
// status decision run inside a caller-owned transaction.
type OrderStorage interface {
	ListOrders(ctx context.Context) ([]*models.Order, error)
	ListRecentOrders(ctx context.Context, days int) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	LockOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64) (models.OrderStatus, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, items, total, shipping_name, shipping_address,
	shipping_city, shipping_pincode, shipping_phone, payment, status, created_at`

func scanOrder(s interface {
	Scan(dest ...any) error
}) (*models.Order, error) {
	order := &models.Order{}
	var rawItems []byte
	if err := s.Scan(
		&order.ID, &order.UserID, &rawItems, &order.Total,
		&order.Shipping.Name, &order.Shipping.Address, &order.Shipping.City,
		&order.Shipping.Pincode, &order.Shipping.Phone,
		&order.Payment, &order.Status, &order.CreatedAt,
	); err != nil {
		return nil, err
	}
	// Malformed stored items JSON decodes to an empty list, never an error.
	if err := json.Unmarshal(rawItems, &order.Items); err != nil || order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders ORDER BY created_at DESC", orderColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepository) ListRecentOrders(ctx context.Context, days int) ([]*models.Order, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM orders WHERE created_at >= NOW() - make_interval(days => $1) ORDER BY created_at DESC",
		orderColumns)
	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// CreateOrder inserts the order with its items serialized into the JSONB
// column. Status starts as Pending.
func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal items: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, items, total, shipping_name, shipping_address,
			shipping_city, shipping_pincode, shipping_phone, payment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		order.UserID, items, order.Total,
		order.Shipping.Name, order.Shipping.Address, order.Shipping.City,
		order.Shipping.Pincode, order.Shipping.Phone,
		order.Payment, models.StatusPending,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

// LockOrderStatusTx reads the current status under a row lock so the
// transition decision and the write happen against the same state.
func (r *orderRepository) LockOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64) (models.OrderStatus, error) {
	var status models.OrderStatus
	row := tx.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&status); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return "", fmt.Errorf("order is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *orderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.OrderStatus) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
