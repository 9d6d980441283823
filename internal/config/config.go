package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// ───── Infrastructure ─────
	DatabaseURL      string
	RedisAddr        string
	KafkaBrokers     []string
	KafkaTopicPrefix string

	// ───── Runtime ─────
	HTTPAddr       string
	ObsHTTPAddr    string
	ServiceName    string
	RequestTimeout time.Duration
	AutoMigrate    bool

	// ───── JWT Security ─────
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// ───── Chat ─────
	ChatWindowSize int

	// ───── Outbox ─────
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int

	// ───── Observability ─────
	TracingEnabled bool
	JaegerURL      string
}

// Load reads the process environment and exits on invalid configuration.
func Load() Config {
	cfg, err := Parse(os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

// Parse builds a Config from getenv and reports every problem at once.
func Parse(getenv func(string) string) (Config, error) {
	e := &env{get: getenv}

	cfg := Config{
		// Infra
		DatabaseURL:      e.must("DATABASE_URL"),
		RedisAddr:        e.str("REDIS_ADDR", ""),
		KafkaBrokers:     e.slice("KAFKA_BROKERS", nil),
		KafkaTopicPrefix: e.str("KAFKA_TOPIC_PREFIX", ""),

		// Runtime
		HTTPAddr:       fixPort(e.str("HTTP_ADDR", ":8080")),
		ObsHTTPAddr:    fixPort(e.str("OBS_HTTP_ADDR", ":9090")),
		ServiceName:    e.str("SERVICE_NAME", "chat-service"),
		RequestTimeout: e.duration("REQUEST_TIMEOUT", 15*time.Second),
		AutoMigrate:    e.boolean("AUTO_MIGRATE", true),

		// JWT
		JWTSecret:   e.must("JWT_SECRET"),
		JWTIssuer:   e.str("JWT_ISSUER", ""),
		JWTAudience: e.str("JWT_AUDIENCE", ""),

		// Chat
		ChatWindowSize: e.integer("CHAT_WINDOW_SIZE", 100),

		// Outbox
		OutboxPollInterval: e.duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    e.integer("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxRetries:   e.integer("OUTBOX_MAX_RETRIES", 3),

		// Observability
		TracingEnabled: e.boolean("TRACING_ENABLED", false),
		JaegerURL:      e.str("JAEGER_URL", "http://jaeger:14268/api/traces"),
	}

	if cfg.ChatWindowSize <= 0 {
		e.fail(fmt.Errorf("CHAT_WINDOW_SIZE must be positive"))
	}

	return cfg, errors.Join(e.errs...)
}

func fixPort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

type env struct {
	get  func(string) string
	errs []error
}

func (e *env) fail(err error) {
	e.errs = append(e.errs, err)
}

func (e *env) must(k string) string {
	v := e.get(k)
	if v == "" {
		e.fail(fmt.Errorf("missing required env: %s", k))
	}
	return v
}

func (e *env) str(k, d string) string {
	v := e.get(k)
	if v == "" {
		return d
	}
	return v
}

func (e *env) integer(k string, d int) int {
	v := e.get(k)
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(fmt.Errorf("invalid int env %s: %w", k, err))
		return d
	}
	return i
}

func (e *env) boolean(k string, d bool) bool {
	v := e.get(k)
	if v == "" {
		return d
	}
	return strings.ToLower(v) == "true"
}

func (e *env) duration(k string, d time.Duration) time.Duration {
	v := e.get(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		e.fail(fmt.Errorf("invalid duration env %s: %w", k, err))
		return d
	}
	return dur
}

func (e *env) slice(k string, d []string) []string {
	v := e.get(k)
	if v == "" {
		return d
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
