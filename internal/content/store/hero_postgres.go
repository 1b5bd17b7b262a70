package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/content/models"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/platform/tx"
)

// HeroPostgres keeps the hero as a JSON document in the settings table.
type HeroPostgres struct {
	db *sqlx.DB
}

func NewHeroPostgres(db *sqlx.DB) *HeroPostgres {
	return &HeroPostgres{db: db}
}

func (s *HeroPostgres) Get(ctx context.Context) (*models.Hero, error) {
	var row struct {
		Value     string    `db:"value"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := tx.QuerierFrom(ctx, s.db).GetContext(ctx, &row,
		`SELECT value, updated_at FROM settings WHERE key = $1`, models.HeroKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read hero: %w", err)
	}
	var h models.Hero
	if err := json.Unmarshal([]byte(row.Value), &h); err != nil {
		return nil, fmt.Errorf("decode hero: %w", err)
	}
	h.UpdatedAt = row.UpdatedAt
	return &h, nil
}

func (s *HeroPostgres) Put(ctx context.Context, h *models.Hero) error {
	value, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode hero: %w", err)
	}
	_, err = tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		models.HeroKey, string(value), h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("write hero: %w", err)
	}
	return nil
}
