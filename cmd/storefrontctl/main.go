// Command storefrontctl runs operator tasks against the storefront database:
// schema migrations, admin bootstrap and catalog imports.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	catalogModels "storefront/internal/catalog/models"
	catalogService "storefront/internal/catalog/service"
	catalogStore "storefront/internal/catalog/store"
	identityModels "storefront/internal/identity/models"
	credentialStore "storefront/internal/identity/store/credential"
	"storefront/internal/platform/config"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/postgres"
	userModels "storefront/internal/user/models"
	userStore "storefront/internal/user/store"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "storefrontctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storefrontctl",
		Usage: "operate the storefront database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL connection URL",
				EnvVars: []string{config.Prefix + "_POSTGRES_URL"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "manage the schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply pending migrations", Action: withDB(migrateUp)},
					{
						Name:   "down",
						Usage:  "roll back migrations",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "steps", Value: 1}},
						Action: withDB(migrateDown),
					},
					{Name: "version", Usage: "print the applied schema version", Action: withDB(migrateVersion)},
				},
			},
			{
				Name:      "promote",
				Usage:     "grant the admin role to a registered user",
				ArgsUsage: "<email>",
				Action:    withDB(promote),
			},
			{
				Name:      "seed",
				Usage:     "import products from a JSON array of product documents",
				ArgsUsage: "<file>",
				Action:    withDB(seed),
			},
		},
	}
}

type dbAction func(c *cli.Context, db *sqlx.DB, log *slog.Logger) error

func withDB(fn dbAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		url := c.String("database-url")
		if url == "" {
			return errors.New("--database-url or " + config.Prefix + "_POSTGRES_URL is required")
		}
		log := logger.NewWithWriter(os.Stderr, c.String("log-level"))
		db, err := postgres.Open(c.Context, config.Postgres{URL: url, MaxOpenConns: 2, MaxIdleConns: 1})
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(c, db, log)
	}
}

func migrateUp(_ *cli.Context, db *sqlx.DB, log *slog.Logger) error {
	if err := postgres.MigrateUp(db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func migrateDown(c *cli.Context, db *sqlx.DB, log *slog.Logger) error {
	steps := c.Int("steps")
	if err := postgres.MigrateDown(db, steps); err != nil {
		return err
	}
	log.Info("migrations rolled back", "steps", steps)
	return nil
}

func migrateVersion(c *cli.Context, db *sqlx.DB, _ *slog.Logger) error {
	v, dirty, err := postgres.Version(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "version=%d dirty=%t\n", v, dirty)
	return nil
}

func promote(c *cli.Context, db *sqlx.DB, log *slog.Logger) error {
	email := c.Args().First()
	if email == "" {
		return errors.New("email argument is required")
	}
	return promoteByEmail(c.Context, credentialStore.NewPostgres(db), userStore.NewPostgres(db), email, log)
}

type CredentialLookup interface {
	FindByEmail(ctx context.Context, email string) (*identityModels.Credential, error)
}

type ProfileWriter interface {
	Execute(ctx context.Context, userID id.UserID, validate func(*userModels.Profile) error, mutate func(*userModels.Profile)) (*userModels.Profile, error)
}

func seed(c *cli.Context, db *sqlx.DB, log *slog.Logger) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("file argument is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var docs []catalogModels.ProductDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	catalog := catalogService.New(catalogStore.NewPostgres(db), catalogService.WithLogger(log))
	n, err := seedCatalog(c.Context, catalog, docs)
	log.Info("catalog seeded", "created", n, "total", len(docs))
	return err
}

// ProductCreator is satisfied by the catalog service.
type ProductCreator interface {
	Create(ctx context.Context, doc catalogModels.ProductDocument) (*catalogModels.Product, error)
}

// seedCatalog creates every document and stops at the first invalid one.
func seedCatalog(ctx context.Context, catalog ProductCreator, docs []catalogModels.ProductDocument) (int, error) {
	ctx = requestcontext.WithRequestID(ctx, "storefrontctl-seed")
	for i, doc := range docs {
		if _, err := catalog.Create(ctx, doc); err != nil {
			return i, fmt.Errorf("product %d (%q): %w", i, doc.Name, err)
		}
	}
	return len(docs), nil
}

// promoteByEmail sets the admin role on the profile that shares the
// credential's user ID. Promoting an admin again is not an error.
func promoteByEmail(ctx context.Context, creds CredentialLookup, profiles ProfileWriter, email string, log *slog.Logger) error {
	cred, err := creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("no account registered for %s", email)
		}
		return err
	}
	now := requestcontext.Now(ctx)
	_, err = profiles.Execute(ctx, cred.UserID,
		func(*userModels.Profile) error { return nil },
		func(p *userModels.Profile) {
			p.Role = userModels.RoleAdmin
			p.UpdatedAt = now
		})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	log.Info("user promoted to admin", "user_id", cred.UserID.String())
	return nil
}
