package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the whole runtime configuration, read from the environment.
type Config struct {
	Port     string `env:"PORT, default=3000"`
	Env      string `env:"APP_ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SecretKey signs session tokens.
	SecretKey    string        `env:"SECRET_KEY, default=dev-secret-key"`
	SessionTTL   time.Duration `env:"SESSION_TTL, default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`

	// RegisterAllowedRoles lists the roles a caller may pick for themselves on /register.
	RegisterAllowedRoles []string `env:"REGISTER_ALLOWED_ROLES, default=admin,manager,staff"`

	Admin    AdminConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// AdminConfig is the account seeded on first startup.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Password string `env:"ADMIN_PASSWORD, default=admin123"`
}

type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER, default=postgres"`
	URL          string `env:"DATABASE_URL"`
	Host         string `env:"DB_HOST, default=localhost"`
	Port         string `env:"DB_PORT, default=5432"`
	User         string `env:"DB_USER, default=postgres"`
	Password     string `env:"DB_PASSWORD"`
	Name         string `env:"DB_NAME, default=tims"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS, default=10"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=100"`
}

// RedisConfig is optional; an empty Addr disables session revocation.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Database.Driver {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a DSN assembled for Driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port)
}
