package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != time.Hour || cfg.Auth.CodeTTL != 10*time.Minute {
		t.Fatalf("unexpected ttl defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.UniformCodeResponse {
		t.Fatalf("uniform code response must default to false")
	}
	if cfg.Mongo.Store != "mongo" || cfg.Mongo.Database != "peerrent" || cfg.Mongo.Timeout != 10*time.Second {
		t.Fatalf("unexpected mongo defaults: %+v", cfg.Mongo)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.Timeout != 3*time.Second || cfg.Redis.LimitPerMinute != 10 {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Mail.Driver != "log" || cfg.Mail.From != `"PeerRent" <no-reply@peerrent.com>` {
		t.Fatalf("unexpected mail defaults: %+v", cfg.Mail)
	}
	if cfg.Notify.Timeout != 10*time.Second || cfg.Notify.Async {
		t.Fatalf("unexpected notify defaults: %+v", cfg.Notify)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("kafka must be disabled by default, got %v", cfg.Kafka.Brokers)
	}
	if cfg.IsProduction() {
		t.Fatalf("development is not production")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":            "s3cret",
		"ENV":                   "production",
		"CODE_TTL":              "5m",
		"UNIFORM_CODE_RESPONSE": "true",
		"STORE":                 "memory",
		"MAIL_DRIVER":           "smtp",
		"MAIL_HOST":             "smtp.mailtrap.io",
		"MAIL_PORT":             "2525",
		"NOTIFY_ASYNC":          "true",
		"KAFKA_BROKERS":         "k1:9092,k2:9092",
		"MONGO_TIMEOUT":         "4s",
		"REDIS_ADDR":            "cache:6379",
		"REDIS_PASSWORD":        "pw",
		"REDIS_TIMEOUT":         "500ms",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.IsProduction() || cfg.Auth.CodeTTL != 5*time.Minute || !cfg.Auth.UniformCodeResponse {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Mail.Port != 2525 || cfg.Mail.Host != "smtp.mailtrap.io" {
		t.Fatalf("unexpected mail config: %+v", cfg.Mail)
	}
	if cfg.Mongo.Timeout != 4*time.Second {
		t.Fatalf("unexpected mongo config: %+v", cfg.Mongo)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.Password != "pw" || cfg.Redis.Timeout != 500*time.Millisecond {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
}

func TestLoadWith_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"bad store", map[string]string{"JWT_SECRET": "x", "STORE": "postgres"}, "STORE"},
		{"smtp without host", map[string]string{"JWT_SECRET": "x", "MAIL_DRIVER": "smtp"}, "MAIL_HOST"},
		{"log driver in production", map[string]string{"JWT_SECRET": "x", "ENV": "production"}, "production"},
		{"zero code ttl", map[string]string{"JWT_SECRET": "x", "CODE_TTL": "0s"}, "CODE_TTL"},
		{"zero mongo timeout", map[string]string{"JWT_SECRET": "x", "MONGO_TIMEOUT": "0s"}, "MONGO_TIMEOUT"},
		{"zero redis timeout", map[string]string{"JWT_SECRET": "x", "REDIS_TIMEOUT": "0s"}, "REDIS_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
