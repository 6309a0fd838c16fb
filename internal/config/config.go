package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageTypePostgres = "postgres"
	StorageTypeMemory   = "memory"

	StrategySaga        = "saga"
	StrategyTransaction = "transaction"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	JWT         JWTConfig         `yaml:"jwt"`
	Log         LogConfig         `yaml:"log"`
	Reservation ReservationConfig `yaml:"reservation"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Email       EmailConfig       `yaml:"email"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	HTTPPort               int    `yaml:"http_port"`
	GRPCPort               int    `yaml:"grpc_port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	Type string `yaml:"type"` // "postgres" or "memory"
}

// JWTConfig contains JWT token settings. Tokens are issued by the identity provider
// and validated here with the shared secret.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// ReservationConfig tunes the reservation workflow
type ReservationConfig struct {
	Strategy              string `yaml:"strategy"` // "saga" or "transaction"
	StoreTimeoutMs        int    `yaml:"store_timeout_ms"`
	CompensationTimeoutMs int    `yaml:"compensation_timeout_ms"`
	ForbidSelfBooking     bool   `yaml:"forbid_self_booking"`
	StrandedGraceMinutes  int    `yaml:"stranded_grace_minutes"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileBookings string `yaml:"reconcile_bookings"`
	ReleaseStranded   string `yaml:"release_stranded"`
}

// EmailConfig contains SendGrid settings. An empty API key selects the logging mailer.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func envInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("HTTP_PORT", &c.Server.HTTPPort)
	envInt("GRPC_PORT", &c.Server.GRPCPort)

	envString("STORAGE_TYPE", &c.Storage.Type)
	envString("JWT_SECRET", &c.JWT.Secret)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	// Reservation
	envString("RESERVATION_STRATEGY", &c.Reservation.Strategy)
	envInt("RESERVATION_STORE_TIMEOUT_MS", &c.Reservation.StoreTimeoutMs)
	if val := os.Getenv("RESERVATION_FORBID_SELF_BOOKING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Reservation.ForbidSelfBooking = b
		}
	}

	// Email
	envString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	envString("EMAIL_FROM", &c.Email.FromEmail)
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Server validation
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.HTTPPort {
		return fmt.Errorf("http and grpc ports must differ: %d", c.Server.HTTPPort)
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = StorageTypePostgres
	}
	switch c.Storage.Type {
	case StorageTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Reservation defaults
	if c.Reservation.Strategy == "" {
		c.Reservation.Strategy = StrategySaga
	}
	if c.Reservation.Strategy != StrategySaga && c.Reservation.Strategy != StrategyTransaction {
		return fmt.Errorf("unknown reservation strategy: %q", c.Reservation.Strategy)
	}
	if c.Reservation.StoreTimeoutMs < 0 {
		return fmt.Errorf("reservation store timeout must not be negative: %d", c.Reservation.StoreTimeoutMs)
	}
	if c.Reservation.StoreTimeoutMs == 0 {
		c.Reservation.StoreTimeoutMs = 3000
	}
	if c.Reservation.CompensationTimeoutMs <= 0 {
		c.Reservation.CompensationTimeoutMs = c.Reservation.StoreTimeoutMs
	}
	if c.Reservation.StrandedGraceMinutes <= 0 {
		c.Reservation.StrandedGraceMinutes = 15
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileBookings == "" {
		c.Scheduler.ReconcileBookings = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.ReleaseStranded == "" {
		c.Scheduler.ReleaseStranded = "0 */5 * * * *" // every 5 minutes
	}

	// Email defaults
	if c.Email.FromName == "" {
		c.Email.FromName = "AgriRent"
	}
	if c.Email.SendGridAPIKey != "" && c.Email.FromEmail == "" {
		return fmt.Errorf("email from address is required when SendGrid is configured")
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetHTTPAddress returns the HTTP listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c ReservationConfig) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMs) * time.Millisecond
}

func (c ReservationConfig) CompensationTimeout() time.Duration {
	return time.Duration(c.CompensationTimeoutMs) * time.Millisecond
}

func (c ReservationConfig) StrandedGrace() time.Duration {
	return time.Duration(c.StrandedGraceMinutes) * time.Minute
}
