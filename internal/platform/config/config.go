package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable read by FromEnv.
const Prefix = "STOREFRONT"

// Config is the full process configuration. Nested structs map to
// STOREFRONT_<SECTION>_<FIELD> variables.
type Config struct {
	Server    Server
	Auth      Auth
	Postgres  Postgres
	Redis     RedisConfig
	Kafka     Kafka
	Pricing   Pricing
	Catalog   Catalog
	Cart      Cart
	Content   Content
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS"`
}

type Auth struct {
	JWTSigningKey   string        `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`
	JWTIssuer       string        `envconfig:"JWT_ISSUER" default:"storefront"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	FederatedKey    string        `envconfig:"FEDERATED_KEY"`
	FederatedIssuer string        `envconfig:"FEDERATED_ISSUER" default:"https://accounts.example.com"`
	// BootstrapAdmins are e-mail addresses granted the admin role on sign-up.
	BootstrapAdmins []string `envconfig:"BOOTSTRAP_ADMINS"`
}

// Postgres is optional; an empty URL selects the in-memory stores.
type Postgres struct {
	URL          string        `envconfig:"URL"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLife  time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

// RedisConfig is optional; an empty URL keeps sessions in memory.
type RedisConfig struct {
	URL          string        `envconfig:"URL"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// Kafka is optional; without brokers audit events stay in memory.
type Kafka struct {
	Brokers     []string `envconfig:"BROKERS"`
	AuditTopic  string   `envconfig:"AUDIT_TOPIC" default:"storefront.audit"`
	AuditBuffer int      `envconfig:"AUDIT_BUFFER" default:"256"`
}

// Pricing holds the checkout constants in whole currency units.
type Pricing struct {
	FreeShippingThreshold int64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"2000"`
	FlatShippingFee       int64 `envconfig:"FLAT_SHIPPING_FEE" default:"80"`
	TaxBasisPoints        int64 `envconfig:"TAX_BASIS_POINTS" default:"1800"`
}

type Catalog struct {
	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	DefaultStock      int `envconfig:"DEFAULT_STOCK" default:"10"`
}

// Cart controls how often carts of expired sessions are released.
type Cart struct {
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

type Content struct {
	HeroCacheTTL time.Duration `envconfig:"HERO_CACHE_TTL" default:"5m"`
}

// RateLimit caps abuse-prone POST endpoints per client IP.
type RateLimit struct {
	Enabled           bool          `envconfig:"ENABLED" default:"true"`
	Window            time.Duration `envconfig:"WINDOW" default:"1m"`
	AuthPerWindow     int           `envconfig:"AUTH_PER_WINDOW" default:"10"`
	CheckoutPerWindow int           `envconfig:"CHECKOUT_PER_WINDOW" default:"5"`
	ContactPerWindow  int           `envconfig:"CONTACT_PER_WINDOW" default:"5"`
}

// FromEnv builds the configuration from STOREFRONT_* environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSigningKey) == "" {
		return fmt.Errorf("load config: %s_AUTH_JWT_SIGNING_KEY must not be empty", Prefix)
	}
	if c.Pricing.TaxBasisPoints < 0 || c.Pricing.FlatShippingFee < 0 || c.Pricing.FreeShippingThreshold < 0 {
		return fmt.Errorf("load config: pricing constants must not be negative")
	}
	if c.Catalog.LowStockThreshold < 0 {
		return fmt.Errorf("load config: low stock threshold must not be negative")
	}
	if c.Cart.SweepInterval <= 0 {
		return fmt.Errorf("load config: cart sweep interval must be positive")
	}
	if c.RateLimit.Enabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("load config: rate limit window must be positive")
	}
	return nil
}
