package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	accounts "storefront/internal/admin/accounts"
	"storefront/internal/cart"
	cartHandler "storefront/internal/cart/handler"
	catalogHandler "storefront/internal/catalog/handler"
	catalogService "storefront/internal/catalog/service"
	contentHandler "storefront/internal/content/handler"
	contentService "storefront/internal/content/service"
	"storefront/internal/dashboard"
	httpapi "storefront/internal/http"
	"storefront/internal/identity/federated"
	identityHandler "storefront/internal/identity/handler"
	identityService "storefront/internal/identity/service"
	jwttoken "storefront/internal/jwt_token"
	orderHandler "storefront/internal/order/handler"
	orderMetrics "storefront/internal/order/metrics"
	orderService "storefront/internal/order/service"
	"storefront/internal/platform/config"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	"storefront/internal/pricing"
	userHandler "storefront/internal/user/handler"
	userService "storefront/internal/user/service"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/audit/publisher"
)

// main wires the stores, services and handlers and runs the HTTP server
// until SIGINT or SIGTERM. Business logic lives in the internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	stores := newStores(cfg, infra, log)

	auditor := publisher.NewPublisher(infra.auditStore,
		publisher.WithAsyncBuffer(cfg.Kafka.AuditBuffer),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	httpMetrics := metrics.New()
	pricer := pricing.New(
		pricing.WithFreeShippingThreshold(id.Amount(cfg.Pricing.FreeShippingThreshold)),
		pricing.WithFlatShippingFee(id.Amount(cfg.Pricing.FlatShippingFee)),
		pricing.WithTaxBasisPoints(cfg.Pricing.TaxBasisPoints),
	)

	users := userService.New(stores.profiles,
		userService.WithLogger(log),
		userService.WithAuditPublisher(auditor),
		userService.WithMetrics(httpMetrics),
		userService.WithBootstrapAdmins(cfg.Auth.BootstrapAdmins),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	identityOpts := []identityService.Option{
		identityService.WithLogger(log),
		identityService.WithAuditPublisher(auditor),
		identityService.WithTokenTTL(cfg.Auth.TokenTTL),
		identityService.WithSessionTTL(cfg.Auth.SessionTTL),
	}
	if v := federated.NewVerifier(cfg.Auth.FederatedKey, cfg.Auth.FederatedIssuer); v != nil {
		identityOpts = append(identityOpts, identityService.WithFederatedVerifier(v))
	}
	identity := identityService.New(stores.credentials, stores.sessions, users, jwtService, identityOpts...)

	carts := cart.NewRegistry()
	unsubscribe := carts.Observe(identity.Notifier())
	defer unsubscribe()

	catalog := catalogService.New(stores.products,
		catalogService.WithLogger(log),
		catalogService.WithAuditPublisher(auditor),
		catalogService.WithDefaultStock(cfg.Catalog.DefaultStock),
		catalogService.WithLowStockThreshold(cfg.Catalog.LowStockThreshold),
	)
	orders := orderService.New(stores.orders, users,
		orderService.WithLogger(log),
		orderService.WithAuditPublisher(auditor),
		orderService.WithMetrics(orderMetrics.New()),
		orderService.WithPricing(pricer),
	)
	content := contentService.New(stores.hero, stores.messages, stores.contacts,
		contentService.WithLogger(log),
		contentService.WithAuditPublisher(auditor),
	)
	deletion := accounts.New(identity, users,
		accounts.WithLogger(log),
		accounts.WithAuditPublisher(auditor),
		accounts.WithMetrics(httpMetrics),
	)

	identityH := identityHandler.New(identity, log)
	catalogH := catalogHandler.New(catalog, log)
	orderH := orderHandler.New(orders, carts, log)
	userH := userHandler.New(users, log)
	contentH := contentHandler.New(content, log)
	dashboardH := dashboard.NewHandler(dashboard.New(orders, users, catalog), log)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   log,
		Latency:  httpMetrics,
		Tokens:   jwttoken.NewJWTServiceAdapter(jwtService),
		Sessions: identity,
		Roles:    users,
		Health:   infra.healthChecks(),
		Throttle: newThrottle(cfg.RateLimit, infra, log),
	}, httpapi.Routes{
		Public: []httpapi.Registrar{identityH, catalogH, contentH},
		Authenticated: []httpapi.Registrar{
			httpapi.RegistrarFunc(identityH.RegisterAuthenticated),
			cartHandler.New(carts, catalog, pricer, log),
			orderH,
			userH,
		},
		Callables: []httpapi.Registrar{accounts.NewHandler(deletion, log)},
		Admin:     []httpapi.AdminRegistrar{catalogH, orderH, userH, contentH, dashboardH},
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting storefront", "addr", cfg.Server.Addr, "storage", infra.storageName())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return carts.RunSweeper(gctx, identity, cfg.Cart.SweepInterval, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down storefront")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
