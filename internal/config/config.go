package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	LogLevel  string
	EnvLoaded bool // false when no .env file was found
	Database  DatabaseConfig
	JWT       JWTConfig
	Notify    NotifyConfig
	Kafka     KafkaConfig
	Cron      CronConfig
	Seed      SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // postgres only
	Path     string // sqlite only
}

// JWTConfig holds JWT configuration. Tokens are issued by the member
// portal; this service only verifies them.
type JWTConfig struct {
	Secret string
	Issuer string
}

// NotifyConfig holds the email/push gateway webhook and LINE OA token
type NotifyConfig struct {
	WebhookURL       string
	WebhookToken     string
	LineChannelToken string
}

// KafkaConfig holds settlement event publishing configuration.
// Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CronConfig holds background job schedules
type CronConfig struct {
	Enabled      bool
	AccrualSpec  string
	ReminderSpec string
	ReminderDays int
}

// SeedConfig holds first-run master data
type SeedConfig struct {
	PoolInitial decimal.Decimal
	DemoMembers bool

	RegularMonthlyRate   decimal.Decimal
	RegularFeeRate       decimal.Decimal
	RegularMaxTerm       int
	QuickCashMonthlyRate decimal.Decimal
	QuickCashFeeRate     decimal.Decimal
	QuickCashMaxTerm     int
	QuickCashMaxAmount   decimal.Decimal
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	envLoaded := godotenv.Load() == nil

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}
	seed, err := loadSeedConfig(appMode)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "3000"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		EnvLoaded: envLoaded,
		Database:  database,
		JWT:       loadJWTConfig(appMode),
		Notify: NotifyConfig{
			WebhookURL:       getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookToken:     getEnv("NOTIFY_WEBHOOK_TOKEN", ""),
			LineChannelToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "coopfund.settlements"),
		},
		Cron: CronConfig{
			Enabled:      getBool("CRON_ENABLED", true),
			AccrualSpec:  getEnv("ACCRUAL_CRON", "0 1 * * *"),
			ReminderSpec: getEnv("REMINDER_CRON", "30 8 * * *"),
			ReminderDays: getInt("REMINDER_DAYS", 3),
		},
		Seed: seed,
	}

	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case "mysql", "sqlite":
	case "postgres":
		defaultPort = "5432"
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql', 'postgres' or 'sqlite')", driver)
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "coopfund"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
		Path:     getEnv(prefix+"DB_PATH", "coopfund.db"),
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret: getEnv(prefix+"JWT_SECRET", "default_secret"),
		Issuer: getEnv("JWT_ISSUER", "spsc-coopfund"),
	}
}

// loadSeedConfig loads first-run pool and loan product values
func loadSeedConfig(mode string) (SeedConfig, error) {
	var (
		cfg SeedConfig
		err error
	)

	decimals := []struct {
		key  string
		def  string
		dest *decimal.Decimal
	}{
		{"POOL_INITIAL", "0", &cfg.PoolInitial},
		{"REGULAR_MONTHLY_RATE", "0.02", &cfg.RegularMonthlyRate},
		{"REGULAR_FEE_RATE", "0.01", &cfg.RegularFeeRate},
		{"QUICKCASH_MONTHLY_RATE", "0.03", &cfg.QuickCashMonthlyRate},
		{"QUICKCASH_FEE_RATE", "0.02", &cfg.QuickCashFeeRate},
		{"QUICKCASH_MAX_AMOUNT", "5000", &cfg.QuickCashMaxAmount},
	}
	for _, d := range decimals {
		if *d.dest, err = decimal.NewFromString(getEnv(d.key, d.def)); err != nil {
			return SeedConfig{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	cfg.RegularMaxTerm = getInt("REGULAR_MAX_TERM", 24)
	cfg.QuickCashMaxTerm = getInt("QUICKCASH_MAX_TERM", 3)
	cfg.DemoMembers = getBool("SEED_DEMO_MEMBERS", mode == "dev")
	return cfg, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://coopfund.spsc.or.th"
	}
	return origins
}
