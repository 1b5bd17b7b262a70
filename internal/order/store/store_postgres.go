package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storefront/internal/order/models"
	"storefront/internal/platform/postgres"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/platform/tx"
)

const orderColumns = `id, user_id, customer_name, email, phone, address, city, pincode,
	payment_method, items, subtotal, shipping, tax, total, status, created_at`

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type orderRow struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	CustomerName  string    `db:"customer_name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	Address       string    `db:"address"`
	City          string    `db:"city"`
	Pincode       string    `db:"pincode"`
	PaymentMethod string    `db:"payment_method"`
	Items         string    `db:"items"`
	Subtotal      int64     `db:"subtotal"`
	Shipping      int64     `db:"shipping"`
	Tax           int64     `db:"tax"`
	Total         int64     `db:"total"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r orderRow) toModel() (models.Order, error) {
	var items []models.LineItem
	if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
		return models.Order{}, fmt.Errorf("decode order items: %w", err)
	}
	return models.Order{
		ID:           id.OrderID(r.ID),
		UserID:       id.UserID(r.UserID),
		CustomerName: r.CustomerName,
		Email:        r.Email,
		Phone:        r.Phone,
		ShippingAddress: models.ShippingAddress{
			Address: r.Address,
			City:    r.City,
			Pincode: r.Pincode,
		},
		PaymentMethod: r.PaymentMethod,
		Items:         items,
		Subtotal:      id.Amount(r.Subtotal),
		Shipping:      id.Amount(r.Shipping),
		Tax:           id.Amount(r.Tax),
		Total:         id.Amount(r.Total),
		Status:        models.Status(r.Status),
		CreatedAt:     r.CreatedAt,
	}, nil
}

func toRow(o *models.Order) (orderRow, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return orderRow{}, fmt.Errorf("encode order items: %w", err)
	}
	return orderRow{
		ID:            uuid.UUID(o.ID),
		UserID:        uuid.UUID(o.UserID),
		CustomerName:  o.CustomerName,
		Email:         o.Email,
		Phone:         o.Phone,
		Address:       o.ShippingAddress.Address,
		City:          o.ShippingAddress.City,
		Pincode:       o.ShippingAddress.Pincode,
		PaymentMethod: o.PaymentMethod,
		Items:         string(items),
		Subtotal:      int64(o.Subtotal),
		Shipping:      int64(o.Shipping),
		Tax:           int64(o.Tax),
		Total:         int64(o.Total),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}, nil
}

func (s *PostgresStore) Create(ctx context.Context, o *models.Order) error {
	row, err := toRow(o)
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, tx.QuerierFrom(ctx, s.db), `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :user_id, :customer_name, :email, :phone, :address, :city, :pincode,
			:payment_method, :items, :subtotal, :shipping, :tax, :total, :status, :created_at)`, row)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orderID id.OrderID) (*models.Order, error) {
	var row orderRow
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &row,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, uuid.UUID(orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	o, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) selectOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	var rows []orderRow
	if err := tx.QuerierFrom(ctx, s.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.Order, error) {
	return s.selectOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`, uuid.UUID(userID))
}

func (s *PostgresStore) List(ctx context.Context, statuses []models.Status) ([]models.Order, error) {
	if len(statuses) == 0 {
		return s.selectOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
	}
	labels := make([]string, len(statuses))
	for i, st := range statuses {
		labels[i] = string(st)
	}
	return s.selectOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = ANY($1::text[]) ORDER BY created_at DESC, id`,
		pq.Array(labels))
}

func (s *PostgresStore) Execute(ctx context.Context, orderID id.OrderID, validate func(*models.Order) error, mutate func(*models.Order)) (*models.Order, error) {
	var out *models.Order
	err := tx.Run(ctx, s.db, func(txCtx context.Context) error {
		q := tx.QuerierFrom(txCtx, s.db)
		var row orderRow
		err := q.GetContext(txCtx, &row,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, uuid.UUID(orderID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}
		o, err := row.toModel()
		if err != nil {
			return err
		}
		if err := validate(&o); err != nil {
			return err
		}
		mutate(&o)
		// Items and totals are fixed at creation; only the status moves.
		if _, err := q.ExecContext(txCtx, `UPDATE orders SET status = $2 WHERE id = $1`,
			uuid.UUID(orderID), string(o.Status)); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		out = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, orderID id.OrderID) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, uuid.UUID(orderID))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete order: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Totals(ctx context.Context) (int, id.Amount, error) {
	var totals struct {
		Count   int   `db:"count"`
		Revenue int64 `db:"revenue"`
	}
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &totals,
		`SELECT COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue FROM orders`)
	if err != nil {
		return 0, 0, fmt.Errorf("order totals: %w", err)
	}
	return totals.Count, id.Amount(totals.Revenue), nil
}
