package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/identity/models"
	"storefront/internal/platform/postgres"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/platform/tx"
)

const credentialColumns = `user_id, email, password_hash, provider, subject, created_at`

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type credentialRow struct {
	UserID       uuid.UUID `db:"user_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Provider     string    `db:"provider"`
	Subject      string    `db:"subject"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r credentialRow) toModel() *models.Credential {
	return &models.Credential{
		UserID:       id.UserID(r.UserID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Provider:     models.Provider(r.Provider),
		Subject:      r.Subject,
		CreatedAt:    r.CreatedAt,
	}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Credential) error {
	_, err := sqlx.NamedExecContext(ctx, tx.QuerierFrom(ctx, s.db), `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES (:user_id, :email, :password_hash, :provider, :subject, :created_at)`,
		credentialRow{
			UserID:       uuid.UUID(c.UserID),
			Email:        c.Email,
			PasswordHash: c.PasswordHash,
			Provider:     string(c.Provider),
			Subject:      c.Subject,
			CreatedAt:    c.CreatedAt,
		})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*models.Credential, error) {
	var row credentialRow
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &row,
		`SELECT `+credentialColumns+` FROM credentials WHERE `+where, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	return s.findOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (s *PostgresStore) FindBySubject(ctx context.Context, provider models.Provider, subject string) (*models.Credential, error) {
	return s.findOne(ctx, `provider = $1 AND subject = $2`, string(provider), subject)
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Credential, error) {
	return s.findOne(ctx, `user_id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM credentials WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
