package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/catalog/models"
	"storefront/internal/platform/postgres"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/platform/tx"
)

const productColumns = `id, name, description, category, price, image_url, stock, bestseller, created_at, updated_at`

// PostgresStore persists products in the products table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type productRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Price       int64     `db:"price"`
	ImageURL    string    `db:"image_url"`
	Stock       int       `db:"stock"`
	Bestseller  bool      `db:"bestseller"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r productRow) toModel() models.Product {
	return models.Product{
		ID:          id.ProductID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       id.Amount(r.Price),
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
		Bestseller:  r.Bestseller,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromModel(p *models.Product) productRow {
	return productRow{
		ID:          uuid.UUID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       int64(p.Price),
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Bestseller:  p.Bestseller,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	err := tx.QuerierFrom(ctx, s.db).SelectContext(ctx, &rows,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	var row productRow
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &row,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, uuid.UUID(productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	p := row.toModel()
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Product) error {
	_, err := sqlx.NamedExecContext(ctx, tx.QuerierFrom(ctx, s.db), `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :name, :description, :category, :price, :image_url, :stock, :bestseller, :created_at, :updated_at)`,
		fromModel(p))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Execute locks the row with FOR UPDATE for the duration of validate and mutate.
func (s *PostgresStore) Execute(ctx context.Context, productID id.ProductID, validate func(*models.Product) error, mutate func(*models.Product)) (*models.Product, error) {
	var out *models.Product
	err := tx.Run(ctx, s.db, func(txCtx context.Context) error {
		q := tx.QuerierFrom(txCtx, s.db)
		var row productRow
		err := q.GetContext(txCtx, &row,
			`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, uuid.UUID(productID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}
		p := row.toModel()
		if err := validate(&p); err != nil {
			return err
		}
		mutate(&p)
		_, err = sqlx.NamedExecContext(txCtx, q, `
			UPDATE products SET name = :name, description = :description, category = :category,
				price = :price, image_url = :image_url, stock = :stock, bestseller = :bestseller,
				updated_at = :updated_at
			WHERE id = :id`, fromModel(&p))
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, productID id.ProductID) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, uuid.UUID(productID))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountLowStock(ctx context.Context, threshold int) (int, error) {
	var n int
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE stock < $1`, threshold)
	if err != nil {
		return 0, fmt.Errorf("count low stock products: %w", err)
	}
	return n, nil
}
