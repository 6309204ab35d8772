package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Business BusinessConfig `mapstructure:"business"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
}

// RedisConfig holds the connection settings for the per-account lock store
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds broker addresses and notification topics
type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

// KafkaTopicConfig names the topics the outbox sender publishes to
type KafkaTopicConfig struct {
	TransactionAlerts string `mapstructure:"transaction_alerts"`
	AccessRequests    string `mapstructure:"access_requests"`
	AccessDecisions   string `mapstructure:"access_decisions"`
}

// AuthConfig holds token signing secrets and validity windows
type AuthConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret"`
	PermissionSecret    string        `mapstructure:"permission_secret"`
	PermissionTokenTTL  time.Duration `mapstructure:"permission_token_ttl"`
	AccessRequestExpiry time.Duration `mapstructure:"access_request_expiry"`
}

// BusinessConfig holds ledger business rules
type BusinessConfig struct {
	MaxDepositCents    int64 `mapstructure:"max_deposit_cents"`
	MaxOutboxRetries   int   `mapstructure:"max_outbox_retries"`
	RecentTransactions int   `mapstructure:"recent_transactions"`
}

// JobsConfig holds the background loop intervals
type JobsConfig struct {
	OutboxInterval      time.Duration `mapstructure:"outbox_interval"`
	ExpirySweepInterval time.Duration `mapstructure:"expiry_sweep_interval"`
}

// Load reads configuration from the given YAML file, with SECUREBANK_*
// environment variables overriding individual keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SECUREBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("logger.level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "securebank")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic.transaction_alerts", "securebank.transaction-alerts")
	v.SetDefault("kafka.topic.access_requests", "securebank.access-requests")
	v.SetDefault("kafka.topic.access_decisions", "securebank.access-decisions")

	v.SetDefault("auth.permission_token_ttl", "30m")
	v.SetDefault("auth.access_request_expiry", "24h")

	v.SetDefault("business.max_deposit_cents", 100_000_000)
	v.SetDefault("business.max_outbox_retries", 3)
	v.SetDefault("business.recent_transactions", 20)

	v.SetDefault("jobs.outbox_interval", "5s")
	v.SetDefault("jobs.expiry_sweep_interval", "1m")
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret cannot be empty")
	}
	if c.Auth.PermissionSecret == "" {
		return fmt.Errorf("auth permission secret cannot be empty")
	}
	if c.Auth.PermissionTokenTTL <= 0 {
		return fmt.Errorf("permission token ttl must be positive")
	}
	if c.Auth.AccessRequestExpiry <= 0 {
		return fmt.Errorf("access request expiry must be positive")
	}

	if c.Business.MaxDepositCents <= 0 {
		return fmt.Errorf("max deposit must be positive, got %d", c.Business.MaxDepositCents)
	}
	if c.Business.RecentTransactions <= 0 {
		return fmt.Errorf("recent transactions must be positive")
	}

	if c.Jobs.OutboxInterval <= 0 {
		return fmt.Errorf("outbox interval must be positive")
	}
	if c.Jobs.ExpirySweepInterval <= 0 {
		return fmt.Errorf("expiry sweep interval must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
