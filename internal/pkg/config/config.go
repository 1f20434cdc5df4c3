package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const minJWTSecretLength = 32

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
	SeedData    bool   `env:"SEED_DATA,    default=true"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTAlgorithm     string        `env:"JWT_ALGORITHM,      default=HS256"`
	JWTExpiration    time.Duration `env:"JWT_EXPIRATION,     default=24h"`
	JWTIssuer        string        `env:"JWT_ISSUER,         default=task-api"`
	BcryptCost       int           `env:"BCRYPT_COST,        default=10"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_manager"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=false"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment enables pretty console logging.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through an arbitrary lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength))
	}
	switch strings.ToUpper(c.Auth.JWTAlgorithm) {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.Auth.JWTAlgorithm))
	}
	if c.Auth.JWTExpiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range 4..31", c.Auth.BcryptCost))
	}
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q must be mongo or memory", c.StoreDriver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
