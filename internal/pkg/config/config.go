package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Mail   MailConfig
	Notify NotifyConfig
	Kafka  KafkaConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=1h"`
	CodeTTL    time.Duration `env:"CODE_TTL,    default=10m"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
	// UniformCodeResponse answers request-code with 200 for unknown emails too.
	UniformCodeResponse bool `env:"UNIFORM_CODE_RESPONSE, default=false"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=peerrent"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
	// Store selects the account store: "mongo" or "memory".
	Store string `env:"STORE, default=mongo"`
}

type RedisConfig struct {
	// Addr empty disables rate limiting.
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,              default=0"`
	Timeout        time.Duration `env:"REDIS_TIMEOUT,         default=3s"`
	LimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE, default=10"`
}

type MailConfig struct {
	// Driver is "smtp" or "log".
	Driver   string `env:"MAIL_DRIVER, default=log"`
	Host     string `env:"MAIL_HOST"`
	Port     int    `env:"MAIL_PORT,   default=587"`
	User     string `env:"MAIL_USER"`
	Password string `env:"MAIL_PASS"`
	From     string `env:"MAIL_FROM,   default=\"PeerRent\" <no-reply@peerrent.com>"`
}

type NotifyConfig struct {
	Timeout time.Duration `env:"NOTIFY_TIMEOUT, default=10s"`
	Async   bool          `env:"NOTIFY_ASYNC,   default=false"`
	Workers int           `env:"NOTIFY_WORKERS, default=4"`
}

type KafkaConfig struct {
	// Brokers empty disables event publishing.
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=auth.events"`
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.CodeTTL <= 0 {
		errs = append(errs, errors.New("CODE_TTL must be positive"))
	}
	if c.Mongo.Timeout <= 0 {
		errs = append(errs, errors.New("MONGO_TIMEOUT must be positive"))
	}
	if c.Redis.Timeout <= 0 {
		errs = append(errs, errors.New("REDIS_TIMEOUT must be positive"))
	}
	switch c.Mongo.Store {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE must be mongo or memory, got %q", c.Mongo.Store))
	}
	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("MAIL_HOST is required when MAIL_DRIVER=smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_DRIVER must be smtp or log, got %q", c.Mail.Driver))
	}
	if c.IsProduction() && c.Mail.Driver == "log" {
		errs = append(errs, errors.New("MAIL_DRIVER=log is not allowed in production"))
	}
	return errors.Join(errs...)
}
