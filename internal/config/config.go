package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"

	"github.com/segyhp/chama-engine/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `mapstructure:"DATABASE_AUTO_MIGRATE"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// Addr returns host:port for the Redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type SchedulerConfig struct {
	StatusRefreshCron string `mapstructure:"SCHEDULER_STATUS_REFRESH_CRON"`
	Timezone          string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	DefaultMonthlyInterestRate string        `mapstructure:"DEFAULT_MONTHLY_INTEREST_RATE"`
	DefaultLoanTermMonths      int           `mapstructure:"DEFAULT_LOAN_TERM_MONTHS"`
	RepaidEpsilon              string        `mapstructure:"REPAID_EPSILON"`
	AllocationMethod           string        `mapstructure:"ALLOCATION_METHOD"`
	MinFiscalYear              int           `mapstructure:"MIN_FISCAL_YEAR"`
	ScheduleCacheTTL           time.Duration `mapstructure:"SCHEDULE_CACHE_TTL"`
}

type RateLimitConfig struct {
	Enabled bool   `mapstructure:"RATE_LIMIT_ENABLED"`
	Rate    string `mapstructure:"RATE_LIMIT"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                   "8080",
	"SERVER_HOST":                   "0.0.0.0",
	"ENV":                           "development",
	"SERVER_READ_TIMEOUT":           "15s",
	"SERVER_WRITE_TIMEOUT":          "15s",
	"DATABASE_URL":                  "",
	"DATABASE_MAX_OPEN_CONNS":       25,
	"DATABASE_MAX_IDLE_CONNS":       5,
	"DATABASE_CONN_MAX_LIFETIME":    "5m",
	"DATABASE_AUTO_MIGRATE":         true,
	"REDIS_HOST":                    "localhost",
	"REDIS_PORT":                    "6379",
	"REDIS_PASSWORD":                "",
	"REDIS_DB":                      0,
	"SCHEDULER_STATUS_REFRESH_CRON": "0 0 1 * * *",
	"SCHEDULER_TIMEZONE":            "Africa/Nairobi",
	"LOG_LEVEL":                     "info",
	"LOG_FORMAT":                    "json",
	"DEFAULT_MONTHLY_INTEREST_RATE": "0.015",
	"DEFAULT_LOAN_TERM_MONTHS":      12,
	"REPAID_EPSILON":                "0.01",
	"ALLOCATION_METHOD":             domain.AllocationMethodProportional,
	"MIN_FISCAL_YEAR":               2020,
	"SCHEDULE_CACHE_TTL":            "1h",
	"RATE_LIMIT_ENABLED":            true,
	"RATE_LIMIT":                    "300-M",
	"HEALTH_CHECK_TIMEOUT":          "5s",
}

// Load reads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.DefaultLoanTermMonths <= 0 {
		return fmt.Errorf("DEFAULT_LOAN_TERM_MONTHS must be greater than 0")
	}

	rate, err := decimal.NewFromString(c.Business.DefaultMonthlyInterestRate)
	if err != nil {
		return fmt.Errorf("DEFAULT_MONTHLY_INTEREST_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("DEFAULT_MONTHLY_INTEREST_RATE must not be negative")
	}

	epsilon, err := decimal.NewFromString(c.Business.RepaidEpsilon)
	if err != nil {
		return fmt.Errorf("REPAID_EPSILON must be a valid decimal: %w", err)
	}
	if epsilon.IsNegative() {
		return fmt.Errorf("REPAID_EPSILON must not be negative")
	}

	switch c.Business.AllocationMethod {
	case domain.AllocationMethodProportional, domain.AllocationMethodLargestRemainder:
	default:
		return fmt.Errorf("ALLOCATION_METHOD must be %q or %q", domain.AllocationMethodProportional, domain.AllocationMethodLargestRemainder)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid time zone: %w", err)
	}

	if c.RateLimit.Enabled {
		if _, err := limiter.NewRateFromFormatted(c.RateLimit.Rate); err != nil {
			return fmt.Errorf("RATE_LIMIT must look like 300-M: %w", err)
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultMonthlyInterestRate returns the default monthly interest rate as decimal
func (c *Config) GetDefaultMonthlyInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.DefaultMonthlyInterestRate)
	return rate
}

// GetRepaidEpsilon returns the repaid threshold as decimal
func (c *Config) GetRepaidEpsilon() decimal.Decimal {
	epsilon, _ := decimal.NewFromString(c.Business.RepaidEpsilon)
	return epsilon
}

// GetSchedulerLocation returns the scheduler time zone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EngineDefaults returns the engine settings implied by configuration alone.
func (c *Config) EngineDefaults() domain.EngineSettings {
	return domain.EngineSettings{
		DefaultMonthlyRate: c.GetDefaultMonthlyInterestRate(),
		DefaultTermMonths:  c.Business.DefaultLoanTermMonths,
		RepaidEpsilon:      c.GetRepaidEpsilon(),
		AllocationMethod:   c.Business.AllocationMethod,
		MinFiscalYear:      c.Business.MinFiscalYear,
	}
}
