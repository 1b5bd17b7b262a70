package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	catalogService "storefront/internal/catalog/service"
	catalogStore "storefront/internal/catalog/store"
	contentService "storefront/internal/content/service"
	contentStore "storefront/internal/content/store"
	httpapi "storefront/internal/http"
	identityService "storefront/internal/identity/service"
	credentialStore "storefront/internal/identity/store/credential"
	sessionStore "storefront/internal/identity/store/session"
	orderService "storefront/internal/order/service"
	orderStore "storefront/internal/order/store"
	"storefront/internal/platform/config"
	"storefront/internal/platform/postgres"
	"storefront/internal/platform/redis"
	userService "storefront/internal/user/service"
	userStore "storefront/internal/user/store"
	audit "storefront/pkg/platform/audit"
	kafkaAudit "storefront/pkg/platform/audit/store/kafka"
	memoryAudit "storefront/pkg/platform/audit/store/memory"
)

// infra holds the optional backing services. Each one is nil when its URL or
// broker list is not configured.
type infra struct {
	db         *sqlx.DB
	redis      *redis.Client
	kafka      *kafkaAudit.Store
	auditStore audit.Store
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	in.db = db
	if db != nil && cfg.Postgres.AutoMigrate {
		if err := postgres.MigrateUp(db); err != nil {
			in.Close()
			return nil, err
		}
		log.Info("database migrations applied")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.redis = rc

	if len(cfg.Kafka.Brokers) > 0 {
		ks, err := kafkaAudit.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.kafka = ks
		if err := ks.EnsureTopic(ctx, 1, 1); err != nil {
			in.Close()
			return nil, fmt.Errorf("prepare audit topic: %w", err)
		}
		in.auditStore = ks
	} else {
		log.Warn("no kafka brokers configured, audit events kept in memory")
		in.auditStore = memoryAudit.NewInMemoryStore()
	}
	return in, nil
}

func (in *infra) storageName() string {
	if in.db != nil {
		return "postgres"
	}
	return "memory"
}

func (in *infra) healthChecks() map[string]httpapi.HealthChecker {
	checks := map[string]httpapi.HealthChecker{}
	if in.db != nil {
		checks["postgres"] = httpapi.HealthFunc(in.db.PingContext)
	}
	if in.redis != nil {
		checks["redis"] = in.redis
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka
	}
	return checks
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

type stores struct {
	profiles    userService.Store
	credentials identityService.CredentialStore
	sessions    identityService.SessionStore
	products    catalogService.Store
	orders      orderService.Store
	hero        contentService.HeroStore
	messages    contentService.MessageStore
	contacts    contentService.ContactStore
}

// newStores picks PostgreSQL for the collections when a database is
// configured and Redis for sessions and the hero cache when Redis is.
func newStores(cfg config.Config, in *infra, log *slog.Logger) stores {
	var s stores
	if in.db != nil {
		s.profiles = userStore.NewPostgres(in.db)
		s.credentials = credentialStore.NewPostgres(in.db)
		s.products = catalogStore.NewPostgres(in.db)
		s.orders = orderStore.NewPostgres(in.db)
		s.hero = contentStore.NewHeroPostgres(in.db)
		s.messages = contentStore.NewMessagesPostgres(in.db)
		s.contacts = contentStore.NewContactsPostgres(in.db)
	} else {
		s.profiles = userStore.NewInMemory()
		s.credentials = credentialStore.NewInMemory()
		s.products = catalogStore.NewInMemory()
		s.orders = orderStore.NewInMemory()
		s.hero = contentStore.NewHeroInMemory()
		s.messages = contentStore.NewMessagesInMemory()
		s.contacts = contentStore.NewContactsInMemory()
	}

	if in.redis != nil {
		s.sessions = sessionStore.NewRedis(in.redis.Client)
		s.hero = contentStore.NewRedisCache(s.hero, in.redis.Client, cfg.Content.HeroCacheTTL, log)
	} else {
		s.sessions = sessionStore.New()
	}
	return s
}
