package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "SCENTLAB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SCENTLAB_DB_DSN"
	EnvDBHost = "SCENTLAB_DB_HOST"
	EnvDBUser = "SCENTLAB_DB_USER"
	EnvDBName = "SCENTLAB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Shipping      ShippingConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SCENTLAB_APP_ENV" required:"true"`
	Port         string `envconfig:"SCENTLAB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCENTLAB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCENTLAB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCENTLAB_DB_DSN"`
	Driver string `envconfig:"SCENTLAB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCENTLAB_DB_HOST"`
	LegacyPort     int    `envconfig:"SCENTLAB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCENTLAB_DB_USER"`
	LegacyPassword string `envconfig:"SCENTLAB_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCENTLAB_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCENTLAB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCENTLAB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCENTLAB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCENTLAB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCENTLAB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCENTLAB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCENTLAB_REDIS_ADDR"`
	Password     string        `envconfig:"SCENTLAB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCENTLAB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCENTLAB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCENTLAB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCENTLAB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCENTLAB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCENTLAB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SCENTLAB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SCENTLAB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SCENTLAB_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SCENTLAB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SCENTLAB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SCENTLAB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SCENTLAB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SCENTLAB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SCENTLAB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SCENTLAB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SCENTLAB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SCENTLAB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SCENTLAB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SCENTLAB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SCENTLAB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// ShippingConfig controls the flat shipping fee and its waiver threshold.
type ShippingConfig struct {
	FlatFee       string `envconfig:"SCENTLAB_SHIPPING_FLAT_FEE" default:"9.99"`
	FreeThreshold string `envconfig:"SCENTLAB_SHIPPING_FREE_THRESHOLD" default:"100"`
}

func (s ShippingConfig) validate() error {
	if _, err := decimal.NewFromString(s.FlatFee); err != nil {
		return fmt.Errorf("invalid shipping flat fee %q: %w", s.FlatFee, err)
	}
	if _, err := decimal.NewFromString(s.FreeThreshold); err != nil {
		return fmt.Errorf("invalid shipping free threshold %q: %w", s.FreeThreshold, err)
	}
	return nil
}

// FlatFeeAmount returns the parsed flat fee.
func (s ShippingConfig) FlatFeeAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(s.FlatFee)
	if err != nil {
		return decimal.RequireFromString("9.99")
	}
	return amount
}

// FreeThresholdAmount returns the parsed free-shipping threshold.
func (s ShippingConfig) FreeThresholdAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(s.FreeThreshold)
	if err != nil {
		return decimal.NewFromInt(100)
	}
	return amount
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SCENTLAB_AUTO_MIGRATE" default:"false"`
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
