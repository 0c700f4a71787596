package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Checkout     CheckoutConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "file:farmdirect.db"
		}
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
	Env          string `envconfig:"FARMDIRECT_APP_ENV" required:"true"`
	Port         string `envconfig:"FARMDIRECT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FARMDIRECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMDIRECT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FARMDIRECT_DB_DSN"`
	Driver string `envconfig:"FARMDIRECT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FARMDIRECT_DB_HOST"`
	Port     int    `envconfig:"FARMDIRECT_DB_PORT" default:"5432"`
	User     string `envconfig:"FARMDIRECT_DB_USER"`
	Password string `envconfig:"FARMDIRECT_DB_PASSWORD"`
	Name     string `envconfig:"FARMDIRECT_DB_NAME"`
	SSLMode  string `envconfig:"FARMDIRECT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMDIRECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMDIRECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMDIRECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMDIRECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMDIRECT_REDIS_URL"`
	Address      string        `envconfig:"FARMDIRECT_REDIS_ADDR"`
	Password     string        `envconfig:"FARMDIRECT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMDIRECT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMDIRECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMDIRECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMDIRECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMDIRECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMDIRECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CheckoutConfig carries the pricing knobs applied at quote and placement time.
// Monetary values are in the smallest currency unit.
type CheckoutConfig struct {
	DeliveryThreshold int `envconfig:"FARMDIRECT_DELIVERY_THRESHOLD" default:"5000"`
	DeliveryFee       int `envconfig:"FARMDIRECT_DELIVERY_FEE" default:"50"`
	AdvancePercent    int `envconfig:"FARMDIRECT_ADVANCE_PERCENT" default:"30"`
}

func (c CheckoutConfig) validate() error {
	if c.DeliveryThreshold < 0 || c.DeliveryFee < 0 {
		return fmt.Errorf("delivery threshold and fee must be non-negative")
	}
	if c.AdvancePercent < 0 || c.AdvancePercent > 100 {
		return fmt.Errorf("advance percent must be between 0 and 100, got %d", c.AdvancePercent)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FARMDIRECT_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FARMDIRECT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FARMDIRECT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
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
