package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Env                 string        `yaml:"env" validate:"required,oneof=dev staging prod test"`
	LogLevel            string        `yaml:"log_level" validate:"required,oneof=debug info warn warning error"`
	LogFormat           string        `yaml:"log_format" validate:"required,oneof=json text"`
	Port                int           `yaml:"port" validate:"gte=1,lte=65535"`
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period" validate:"gt=0"`

	DatabaseDriver string `yaml:"database_driver" validate:"required,oneof=sqlite postgres"`
	DatabaseFile   string `yaml:"database_file" validate:"required_if=DatabaseDriver sqlite"`
	DatabaseURL    string `yaml:"database_url" validate:"required_if=DatabaseDriver postgres"`
	PepperFile     string `yaml:"pepper_file" validate:"required"`

	BlobDriver  string        `yaml:"blob_driver" validate:"required,oneof=memory fs s3"`
	BlobDir     string        `yaml:"blob_dir" validate:"required_if=BlobDriver fs"`
	S3Endpoint  string        `yaml:"s3_endpoint" validate:"omitempty,url"`
	S3Region    string        `yaml:"s3_region" validate:"required_if=BlobDriver s3"`
	S3Bucket    string        `yaml:"s3_bucket" validate:"required_if=BlobDriver s3"`
	S3AccessKey string        `yaml:"s3_access_key"`
	S3SecretKey string        `yaml:"s3_secret_key" validate:"required_with=S3AccessKey"`
	BlobTimeout time.Duration `yaml:"blob_timeout" validate:"gte=0"`

	UploadMaxBytesAuthenticated int64 `yaml:"upload_max_bytes_authenticated" validate:"gt=0"`
	UploadMaxBytesAnonymous     int64 `yaml:"upload_max_bytes_anonymous" validate:"gt=0"`

	AuthIssuer       string        `yaml:"auth_issuer" validate:"required"`
	AuthAudience     []string      `yaml:"auth_audience"`
	AuthJWKSURL      string        `yaml:"auth_jwks_url" validate:"omitempty,url"`
	AuthHS256Secret  string        `yaml:"auth_hs256_secret" validate:"omitempty,min=32"`
	JWKSRefreshEvery time.Duration `yaml:"auth_jwks_refresh_interval" validate:"gte=0"`

	RedisURL       string        `yaml:"redis_url"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" validate:"gt=0"`

	KafkaBrokers     []string `yaml:"kafka_brokers" validate:"dive,hostname_port"`
	KafkaTopicPrefix string   `yaml:"kafka_topic_prefix"`

	MeiliURL    string `yaml:"meili_url" validate:"omitempty,url"`
	MeiliAPIKey string `yaml:"meili_api_key"`

	LoginPath string `yaml:"login_path" validate:"required,startswith=/"`
	ClaimPath string `yaml:"claim_path" validate:"required,startswith=/"`

	OrphanAuditInterval time.Duration `yaml:"orphan_audit_interval" validate:"gte=0"`
	OrphanGracePeriod   time.Duration `yaml:"orphan_grace_period" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig is a single-node development setup: sqlite, blobs on
// disk, no Redis, Kafka or Meilisearch.
func DefaultConfig() Config {
	return Config{
		Env:                         "dev",
		LogLevel:                    "info",
		LogFormat:                   "json",
		Port:                        8080,
		ShutdownGracePeriod:         10 * time.Second,
		DatabaseDriver:              "sqlite",
		DatabaseFile:                "intake.db",
		PepperFile:                  "pepper",
		BlobDriver:                  "fs",
		BlobDir:                     "blobs",
		BlobTimeout:                 30 * time.Second,
		UploadMaxBytesAuthenticated: 50 << 20,
		UploadMaxBytesAnonymous:     10 << 20,
		AuthIssuer:                  "bartab-auth",
		AuthAudience:                []string{"leadflow-intake"},
		JWKSRefreshEvery:            15 * time.Minute,
		IdempotencyTTL:              24 * time.Hour,
		KafkaTopicPrefix:            "leadflow.",
		LoginPath:                   "/login",
		ClaimPath:                   "/claim",
		OrphanAuditInterval:         0,
		OrphanGracePeriod:           24 * time.Hour,
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML
// file and the environment, in that order, then validates it.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = defaultConfigFile
	}
	if err := loadYAML(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.AuthJWKSURL == "" && cfg.AuthHS256Secret == "" {
		return Config{}, errors.New("invalid configuration: one of AUTH_JWKS_URL or AUTH_HS256_SECRET is required")
	}
	return cfg, nil
}

// loadYAML overlays the file onto cfg; keys absent from the file keep
// their current value.
func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)

	cfg.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseFile = getEnvOrDefault("DATABASE_FILE", cfg.DatabaseFile)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.PepperFile = getEnvOrDefault("PEPPER_FILE", cfg.PepperFile)

	cfg.BlobDriver = getEnvOrDefault("BLOB_DRIVER", cfg.BlobDriver)
	cfg.BlobDir = getEnvOrDefault("BLOB_DIR", cfg.BlobDir)
	cfg.S3Endpoint = getEnvOrDefault("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3Region = getEnvOrDefault("S3_REGION", cfg.S3Region)
	cfg.S3Bucket = getEnvOrDefault("S3_BUCKET", cfg.S3Bucket)
	cfg.S3AccessKey = getEnvOrDefault("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnvOrDefault("S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.BlobTimeout = getEnvDurationOrDefault("BLOB_TIMEOUT", cfg.BlobTimeout)

	cfg.UploadMaxBytesAuthenticated = getEnvInt64OrDefault("UPLOAD_MAX_BYTES_AUTHENTICATED", cfg.UploadMaxBytesAuthenticated)
	cfg.UploadMaxBytesAnonymous = getEnvInt64OrDefault("UPLOAD_MAX_BYTES_ANONYMOUS", cfg.UploadMaxBytesAnonymous)

	cfg.AuthIssuer = getEnvOrDefault("AUTH_ISSUER", cfg.AuthIssuer)
	cfg.AuthAudience = getEnvCSV("AUTH_AUDIENCE", cfg.AuthAudience)
	cfg.AuthJWKSURL = getEnvOrDefault("AUTH_JWKS_URL", cfg.AuthJWKSURL)
	cfg.AuthHS256Secret = getEnvOrDefault("AUTH_HS256_SECRET", cfg.AuthHS256Secret)
	cfg.JWKSRefreshEvery = getEnvDurationOrDefault("AUTH_JWKS_REFRESH_INTERVAL", cfg.JWKSRefreshEvery)

	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.IdempotencyTTL = getEnvDurationOrDefault("IDEMPOTENCY_TTL", cfg.IdempotencyTTL)

	cfg.KafkaBrokers = getEnvCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicPrefix = getEnvOrDefault("KAFKA_TOPIC_PREFIX", cfg.KafkaTopicPrefix)

	cfg.MeiliURL = getEnvOrDefault("MEILI_URL", cfg.MeiliURL)
	cfg.MeiliAPIKey = getEnvOrDefault("MEILI_API_KEY", cfg.MeiliAPIKey)

	cfg.LoginPath = getEnvOrDefault("LOGIN_PATH", cfg.LoginPath)
	cfg.ClaimPath = getEnvOrDefault("CLAIM_PATH", cfg.ClaimPath)

	cfg.OrphanAuditInterval = getEnvDurationOrDefault("ORPHAN_AUDIT_INTERVAL", cfg.OrphanAuditInterval)
	cfg.OrphanGracePeriod = getEnvDurationOrDefault("ORPHAN_GRACE_PERIOD", cfg.OrphanGracePeriod)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvCSV splits a comma-separated variable, dropping empty entries.
func getEnvCSV(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
