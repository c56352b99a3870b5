package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store, extractor, ledger and storage modes.
const (
	ModePostgres = "postgres"
	ModeMemory   = "memory"
	ModeOpenAI   = "openai"
	ModeJSON     = "json"
	ModeHTTP     = "http"
	ModeS3       = "s3"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	MigrationsPath string
	JWTSecret      string
	LogLevel       string
	LogFormat      string

	// Pipeline
	AutoApprovalThreshold decimal.Decimal
	CurrencyCode          string
	ExpenseAccount        string
	PayableAccount        string
	StoreMode             string
	MaxUploadBytes        int64

	// Extraction
	ExtractorMode string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Ledger
	LedgerMode           string
	LedgerBaseURL        string
	LedgerAPIKey         string
	LedgerTimeout        time.Duration
	LedgerMaxAttempts    int
	LedgerRetryBaseDelay time.Duration

	// Object storage
	StorageMode    string
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// Claim lock
	RedisURL        string
	ClaimLockExpiry time.Duration

	// HTTP
	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("AUTO_APPROVAL_THRESHOLD", "1000")
	viper.SetDefault("CURRENCY_CODE", "USD")
	viper.SetDefault("EXPENSE_ACCOUNT", "Expenses")
	viper.SetDefault("PAYABLE_ACCOUNT", "Accounts Payable")
	viper.SetDefault("STORE_MODE", ModePostgres)
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("EXTRACTOR_MODE", ModeOpenAI)
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4.1")
	viper.SetDefault("LEDGER_MODE", ModeHTTP)
	viper.SetDefault("LEDGER_BASE_URL", "http://localhost:8090")
	viper.SetDefault("LEDGER_API_KEY", "")
	viper.SetDefault("LEDGER_TIMEOUT", "10s")
	viper.SetDefault("LEDGER_MAX_ATTEMPTS", 3)
	viper.SetDefault("LEDGER_RETRY_BASE_DELAY", "500ms")
	viper.SetDefault("STORAGE_MODE", ModeS3)
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_BUCKET", "invoices")
	viper.SetDefault("S3_ACCESS_KEY", "")
	viper.SetDefault("S3_SECRET_KEY", "")
	viper.SetDefault("S3_USE_PATH_STYLE", true)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CLAIM_LOCK_EXPIRY", "30s")
	viper.SetDefault("RATE_LIMIT", "30-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	cfg.LogFormat = viper.GetString("LOG_FORMAT")

	threshold, err := decimal.NewFromString(strings.TrimSpace(viper.GetString("AUTO_APPROVAL_THRESHOLD")))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_APPROVAL_THRESHOLD: %w", err)
	}
	if !threshold.IsPositive() {
		return nil, fmt.Errorf("invalid AUTO_APPROVAL_THRESHOLD: must be greater than zero, got %s", threshold.String())
	}
	cfg.AutoApprovalThreshold = threshold

	cfg.CurrencyCode = strings.ToUpper(viper.GetString("CURRENCY_CODE"))
	cfg.ExpenseAccount = viper.GetString("EXPENSE_ACCOUNT")
	cfg.PayableAccount = viper.GetString("PAYABLE_ACCOUNT")
	if cfg.ExpenseAccount == "" || cfg.PayableAccount == "" {
		return nil, fmt.Errorf("EXPENSE_ACCOUNT and PAYABLE_ACCOUNT must not be empty")
	}
	cfg.MaxUploadBytes = viper.GetInt64("MAX_UPLOAD_BYTES")

	cfg.StoreMode, err = oneOf("STORE_MODE", ModePostgres, ModeMemory)
	if err != nil {
		return nil, err
	}
	if cfg.StoreMode == ModePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.ExtractorMode, err = oneOf("EXTRACTOR_MODE", ModeOpenAI, ModeJSON)
	if err != nil {
		return nil, err
	}
	cfg.OpenAIAPIKey = viper.GetString("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = viper.GetString("OPENAI_BASE_URL")
	cfg.OpenAIModel = viper.GetString("OPENAI_MODEL")
	if cfg.ExtractorMode == ModeOpenAI && cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set. Document extraction will fail.")
	}

	cfg.LedgerMode, err = oneOf("LEDGER_MODE", ModeHTTP, ModeMemory)
	if err != nil {
		return nil, err
	}
	cfg.LedgerBaseURL = strings.TrimRight(viper.GetString("LEDGER_BASE_URL"), "/")
	cfg.LedgerAPIKey = viper.GetString("LEDGER_API_KEY")
	cfg.LedgerTimeout = durationOr("LEDGER_TIMEOUT", 10*time.Second)
	cfg.LedgerMaxAttempts = viper.GetInt("LEDGER_MAX_ATTEMPTS")
	if cfg.LedgerMaxAttempts < 1 {
		cfg.LedgerMaxAttempts = 1
	}
	cfg.LedgerRetryBaseDelay = durationOr("LEDGER_RETRY_BASE_DELAY", 500*time.Millisecond)

	cfg.StorageMode, err = oneOf("STORAGE_MODE", ModeS3, ModeMemory)
	if err != nil {
		return nil, err
	}
	cfg.S3Endpoint = viper.GetString("S3_ENDPOINT")
	cfg.S3Region = viper.GetString("S3_REGION")
	cfg.S3Bucket = viper.GetString("S3_BUCKET")
	cfg.S3AccessKey = viper.GetString("S3_ACCESS_KEY")
	cfg.S3SecretKey = viper.GetString("S3_SECRET_KEY")
	cfg.S3UsePathStyle = viper.GetBool("S3_USE_PATH_STYLE")

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.ClaimLockExpiry = durationOr("CLAIM_LOCK_EXPIRY", 30*time.Second)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func oneOf(key string, allowed ...string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(viper.GetString(key)))
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: expected one of %s", key, value, strings.Join(allowed, ", "))
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
