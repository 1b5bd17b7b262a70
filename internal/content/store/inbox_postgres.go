package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/content/models"
	"storefront/internal/platform/postgres"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/platform/tx"
)

// messages and contacts share one row shape.
type inboxRow struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

const inboxColumns = `id, first_name, last_name, email, message, created_at`

func insertInbox(ctx context.Context, db *sqlx.DB, table string, row inboxRow) error {
	_, err := sqlx.NamedExecContext(ctx, tx.QuerierFrom(ctx, db),
		`INSERT INTO `+table+` (`+inboxColumns+`)
		VALUES (:id, :first_name, :last_name, :email, :message, :created_at)`, row)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func listInbox(ctx context.Context, db *sqlx.DB, table string) ([]inboxRow, error) {
	var rows []inboxRow
	err := tx.QuerierFrom(ctx, db).SelectContext(ctx, &rows,
		`SELECT `+inboxColumns+` FROM `+table+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return rows, nil
}

type MessagesPostgres struct {
	db *sqlx.DB
}

func NewMessagesPostgres(db *sqlx.DB) *MessagesPostgres {
	return &MessagesPostgres{db: db}
}

func (s *MessagesPostgres) Create(ctx context.Context, m *models.Message) error {
	return insertInbox(ctx, s.db, "messages", inboxRow{
		ID:        uuid.UUID(m.ID),
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	})
}

func (s *MessagesPostgres) List(ctx context.Context) ([]models.Message, error) {
	rows, err := listInbox(ctx, s.db, "messages")
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Message{
			ID:        id.MessageID(r.ID),
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (s *MessagesPostgres) Delete(ctx context.Context, messageID id.MessageID) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, uuid.UUID(messageID))
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type ContactsPostgres struct {
	db *sqlx.DB
}

func NewContactsPostgres(db *sqlx.DB) *ContactsPostgres {
	return &ContactsPostgres{db: db}
}

func (s *ContactsPostgres) Create(ctx context.Context, c *models.Contact) error {
	return insertInbox(ctx, s.db, "contacts", inboxRow{
		ID:        uuid.UUID(c.ID),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	})
}

func (s *ContactsPostgres) List(ctx context.Context) ([]models.Contact, error) {
	rows, err := listInbox(ctx, s.db, "contacts")
	if err != nil {
		return nil, err
	}
	out := make([]models.Contact, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Contact{
			ID:        id.ContactID(r.ID),
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}
