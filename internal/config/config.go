package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/DTyss/GymApp-sub000/internal/models"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DBUrl       string `envconfig:"DB_URL"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	AppEnv      string `envconfig:"APP_ENV" default:"production"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	QRSecret  string `envconfig:"QR_SECRET" required:"true"`

	QRDefaultTTL           time.Duration `envconfig:"QR_DEFAULT_TTL" default:"60s"`
	QRMaxTTL               time.Duration `envconfig:"QR_MAX_TTL" default:"300s"`
	QRSingleUse            bool          `envconfig:"QR_SINGLE_USE" default:"true"`
	CheckinMembershipOrder string        `envconfig:"CHECKIN_MEMBERSHIP_ORDER" default:"latest_expiring"`
	CheckinRateLimit       int           `envconfig:"CHECKIN_RATE_LIMIT" default:"60"`

	RedisURL            string `envconfig:"REDIS_URL"`
	RabbitURL           string `envconfig:"RABBIT_URL"`
	EventsExchange      string `envconfig:"EVENTS_EXCHANGE" default:"gym.events"`
	ExpirySweepSchedule string `envconfig:"EXPIRY_SWEEP_SCHEDULE" default:"@every 15m"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"gym-api"`

	// MembershipSelection is CheckinMembershipOrder after validation.
	MembershipSelection models.MembershipSelection `ignored:"true"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.QRSecret) == "" {
		return nil, fmt.Errorf("QR_SECRET is required")
	}

	cfg.AppEnv = normalizeEnv(cfg.AppEnv)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DBUrl == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	selection, ok := models.ParseMembershipSelection(strings.TrimSpace(cfg.CheckinMembershipOrder))
	if !ok {
		return nil, fmt.Errorf("unknown CHECKIN_MEMBERSHIP_ORDER %q", cfg.CheckinMembershipOrder)
	}
	cfg.MembershipSelection = selection

	if cfg.QRDefaultTTL <= 0 || cfg.QRMaxTTL < cfg.QRDefaultTTL {
		return nil, fmt.Errorf("QR_DEFAULT_TTL must be positive and not exceed QR_MAX_TTL")
	}
	if cfg.DBMinConns < 0 || cfg.DBMaxConns < cfg.DBMinConns || cfg.DBMaxConns == 0 {
		return nil, fmt.Errorf("invalid DB pool bounds %d..%d", cfg.DBMinConns, cfg.DBMaxConns)
	}
	return &cfg, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func (c *Config) TracingEnabled() bool {
	return c != nil && c.OTLPEndpoint != ""
}
