package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SAFETYSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "SAFETYSHOP_APP_ENV"
	EnvPort           = "SAFETYSHOP_APP_PORT"
	EnvDBDSN          = "SAFETYSHOP_DB_DSN"
	EnvDBHost         = "SAFETYSHOP_DB_HOST"
	EnvDBUser         = "SAFETYSHOP_DB_USER"
	EnvDBName         = "SAFETYSHOP_DB_NAME"
	EnvRedisURL       = "SAFETYSHOP_REDIS_URL"
	EnvUseSQLite      = "SAFETYSHOP_USE_SQLITE"
	EnvSQLitePath     = "SAFETYSHOP_SQLITE_PATH"
	EnvCompanyName    = "SAFETYSHOP_COMPANY_NAME"
	EnvCompanyAddress = "SAFETYSHOP_COMPANY_ADDRESS"
	EnvCompanyTaxID   = "SAFETYSHOP_COMPANY_TAX_ID"
	EnvInvoiceLocale  = "SAFETYSHOP_INVOICE_LOCALE"
	EnvInvoiceTimeout = "SAFETYSHOP_INVOICE_RENDER_TIMEOUT"
	EnvInvoiceLimit   = "SAFETYSHOP_RATE_LIMIT_INVOICE_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Company      CompanyConfig
	Invoice      InvoiceConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SAFETYSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SAFETYSHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SAFETYSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAFETYSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"SAFETYSHOP_DB_DSN"`
	SQLitePath string `envconfig:"SAFETYSHOP_SQLITE_PATH" default:"safetyshop.db"`

	LegacyHost     string `envconfig:"SAFETYSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SAFETYSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SAFETYSHOP_DB_USER"`
	LegacyPassword string `envconfig:"SAFETYSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SAFETYSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SAFETYSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SAFETYSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SAFETYSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SAFETYSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SAFETYSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; an empty URL and address disables rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"SAFETYSHOP_REDIS_URL"`
	Address      string        `envconfig:"SAFETYSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"SAFETYSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SAFETYSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SAFETYSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SAFETYSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SAFETYSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SAFETYSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SAFETYSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SAFETYSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SAFETYSHOP_AUTO_MIGRATE" default:"false"`
}

// CompanyConfig is the letterhead printed on every invoice.
type CompanyConfig struct {
	Name    string `envconfig:"SAFETYSHOP_COMPANY_NAME" default:"SafetyShop Industrial Supplies"`
	Tagline string `envconfig:"SAFETYSHOP_COMPANY_TAGLINE" default:"Industrial safety equipment"`
	Address Lines  `envconfig:"SAFETYSHOP_COMPANY_ADDRESS"`
	TaxID   string `envconfig:"SAFETYSHOP_COMPANY_TAX_ID"`
	Email   string `envconfig:"SAFETYSHOP_COMPANY_EMAIL"`
	Website string `envconfig:"SAFETYSHOP_COMPANY_WEBSITE"`
	Phone   string `envconfig:"SAFETYSHOP_COMPANY_PHONE"`
}

type InvoiceConfig struct {
	Locale         string        `envconfig:"SAFETYSHOP_INVOICE_LOCALE" default:"en-IN"`
	CurrencySymbol string        `envconfig:"SAFETYSHOP_INVOICE_CURRENCY_SYMBOL" default:"Rs. "`
	Timezone       string        `envconfig:"SAFETYSHOP_INVOICE_TIMEZONE" default:"Asia/Kolkata"`
	NumberPrefix   string        `envconfig:"SAFETYSHOP_INVOICE_NUMBER_PREFIX" default:"INV-"`
	RenderTimeout  time.Duration `envconfig:"SAFETYSHOP_INVOICE_RENDER_TIMEOUT" default:"15s"`
	FooterNote     string        `envconfig:"SAFETYSHOP_INVOICE_FOOTER_NOTE" default:"This is a computer generated invoice."`
}

type RateLimitConfig struct {
	InvoiceWindow time.Duration `envconfig:"SAFETYSHOP_RATE_LIMIT_INVOICE_WINDOW" default:"1m"`
	InvoiceLimit  int           `envconfig:"SAFETYSHOP_RATE_LIMIT_INVOICE_LIMIT" default:"30"`
}

// CORSConfig lists the storefront origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SAFETYSHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Lines decodes a "|"-separated env value so address lines may contain commas.
type Lines []string

// Decode implements envconfig.Decoder.
func (l *Lines) Decode(value string) error {
	var out Lines
	for _, part := range strings.Split(value, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*l = out
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
