package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"BANCA_APP_ENV" required:"true"`
	Port         string   `envconfig:"BANCA_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"BANCA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"BANCA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"BANCA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BANCA_DB_DSN"`
	Driver string `envconfig:"BANCA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BANCA_DB_HOST"`
	Port     int    `envconfig:"BANCA_DB_PORT" default:"5432"`
	User     string `envconfig:"BANCA_DB_USER"`
	Password string `envconfig:"BANCA_DB_PASSWORD"`
	Name     string `envconfig:"BANCA_DB_NAME"`
	SSLMode  string `envconfig:"BANCA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BANCA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BANCA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BANCA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BANCA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BANCA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BANCA_REDIS_ADDR"`
	Password     string        `envconfig:"BANCA_REDIS_PASSWORD"`
	DB           int           `envconfig:"BANCA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BANCA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BANCA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BANCA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BANCA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BANCA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BANCA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BANCA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BANCA_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"BANCA_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the admin session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BANCA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BANCA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BANCA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BANCA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BANCA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BANCA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"BANCA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BANCA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BANCA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BANCA_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"BANCA_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	// PriceTolerance is the absolute currency-unit tolerance applied when
	// comparing cached cart prices against the catalog. It absorbs float
	// rounding, not real price drift.
	PriceTolerance float64 `envconfig:"BANCA_CHECKOUT_PRICE_TOLERANCE" default:"0.01"`
	Fulfillment    string  `envconfig:"BANCA_CHECKOUT_FULFILLMENT" default:"order"`
	WhatsAppNumber string  `envconfig:"BANCA_CHECKOUT_WHATSAPP_NUMBER"`
	StoreName      string  `envconfig:"BANCA_STORE_NAME" default:"Banca do Sucesso"`
}

func (c CheckoutConfig) validate() error {
	switch c.Fulfillment {
	case FulfillmentOrder:
	case FulfillmentWhatsApp:
		if strings.TrimSpace(c.WhatsAppNumber) == "" {
			return fmt.Errorf("%s is required when fulfillment is %q", EnvWhatsAppNumber, FulfillmentWhatsApp)
		}
	default:
		return fmt.Errorf("invalid checkout fulfillment %q (expected %q or %q)", c.Fulfillment, FulfillmentOrder, FulfillmentWhatsApp)
	}
	return nil
}

type GCPConfig struct {
	ProjectID string `envconfig:"BANCA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"BANCA_PUBSUB_ORDERS_TOPIC" default:"banca-order-events"`
	OrdersSubscription string `envconfig:"BANCA_PUBSUB_ORDERS_SUBSCRIPTION" default:"banca-order-events-notifier"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BANCA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BANCA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BANCA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	OrderExpiryAfter time.Duration `envconfig:"BANCA_CRON_ORDER_EXPIRY_AFTER" default:"240h"`
	OutboxRetention  time.Duration `envconfig:"BANCA_CRON_OUTBOX_RETENTION" default:"168h"`
	Interval         time.Duration `envconfig:"BANCA_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
