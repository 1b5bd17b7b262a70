package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/platform/postgres"
	"storefront/internal/user/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/platform/tx"
)

const profileColumns = `id, email, display_name, phone, address, city, pincode, role, created_at, updated_at`

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type profileRow struct {
	ID          uuid.UUID `db:"id"`
	Email       string    `db:"email"`
	DisplayName string    `db:"display_name"`
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	City        string    `db:"city"`
	Pincode     string    `db:"pincode"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r profileRow) toModel() models.Profile {
	return models.Profile{
		ID:          id.UserID(r.ID),
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Phone:       r.Phone,
		Address:     r.Address,
		City:        r.City,
		Pincode:     r.Pincode,
		Role:        models.Role(r.Role),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toRow(p *models.Profile) profileRow {
	return profileRow{
		ID:          uuid.UUID(p.ID),
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Phone:       p.Phone,
		Address:     p.Address,
		City:        p.City,
		Pincode:     p.Pincode,
		Role:        string(p.Role),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Profile) error {
	_, err := sqlx.NamedExecContext(ctx, tx.QuerierFrom(ctx, s.db), `
		INSERT INTO users (`+profileColumns+`)
		VALUES (:id, :email, :display_name, :phone, :address, :city, :pincode, :role, :created_at, :updated_at)`,
		toRow(p))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	var row profileRow
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &row,
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	p := row.toModel()
	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Profile, error) {
	var rows []profileRow
	err := tx.QuerierFrom(ctx, s.db).SelectContext(ctx, &rows,
		`SELECT `+profileColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]models.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStore) Execute(ctx context.Context, userID id.UserID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error) {
	var out *models.Profile
	err := tx.Run(ctx, s.db, func(txCtx context.Context) error {
		q := tx.QuerierFrom(txCtx, s.db)
		var row profileRow
		err := q.GetContext(txCtx, &row,
			`SELECT `+profileColumns+` FROM users WHERE id = $1 FOR UPDATE`, uuid.UUID(userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock profile: %w", err)
		}
		p := row.toModel()
		if err := validate(&p); err != nil {
			return err
		}
		mutate(&p)
		_, err = sqlx.NamedExecContext(txCtx, q, `
			UPDATE users SET email = :email, display_name = :display_name, phone = :phone,
				address = :address, city = :city, pincode = :pincode, role = :role,
				updated_at = :updated_at
			WHERE id = :id`, toRow(&p))
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role))
	if err != nil {
		return 0, fmt.Errorf("count profiles by role: %w", err)
	}
	return n, nil
}
