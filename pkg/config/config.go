package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the wallet gateway configuration
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Solana         SolanaConfig         `mapstructure:"solana"`
	Gate           GateConfig           `mapstructure:"gate"`
	KeyManagement  KeyManagementConfig  `mapstructure:"key_management"`
	Courier        CourierConfig        `mapstructure:"courier"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// SolanaConfig contains Solana JSON-RPC endpoint settings
type SolanaConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// GateConfig contains action gate settings
type GateConfig struct {
	// UnlockThreshold is the minimum confirmed balance in SOL required to
	// run gated actions. One threshold applies to all gated actions.
	UnlockThreshold string `mapstructure:"unlock_threshold"`
}

// KeyManagementConfig contains settings for encrypting secret credentials at rest
type KeyManagementConfig struct {
	// MasterKey is the base64-encoded 32-byte AES key. Takes precedence
	// over ServerSeed when both are set.
	MasterKey string `mapstructure:"master_key"`
	// ServerSeed derives the master key via HKDF when MasterKey is unset.
	ServerSeed string `mapstructure:"server_seed"`
}

// CourierConfig contains settings for the one-time secret delivery channel
type CourierConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	SigningSecret string `mapstructure:"signing_secret"`
	Issuer        string `mapstructure:"issuer"`
}

// AuthConfig contains settings for authenticating the chat transport
type AuthConfig struct {
	// JWTSecret is the shared HS256 secret the transport signs requests with.
	// Empty disables authentication (local development only).
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ReconciliationConfig contains settings for background balance refresh
type ReconciliationConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	InitialTimeout time.Duration `mapstructure:"initial_timeout"`
	Interval       time.Duration `mapstructure:"interval"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "wallet_gateway")

	// Solana defaults
	viper.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	viper.SetDefault("solana.request_timeout", "30s")

	// Gate defaults
	viper.SetDefault("gate.unlock_threshold", "0.01")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")

	// Reconciliation defaults
	viper.SetDefault("reconciliation.enabled", true)
	viper.SetDefault("reconciliation.initial_timeout", "2m")
	viper.SetDefault("reconciliation.interval", "5m")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Solana.RPCURL == "" {
		return fmt.Errorf("solana.rpc_url is required")
	}
	if config.KeyManagement.MasterKey == "" && config.KeyManagement.ServerSeed == "" {
		return fmt.Errorf("key_management.master_key or key_management.server_seed is required")
	}
	if config.Courier.Endpoint == "" {
		return fmt.Errorf("courier.endpoint is required")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
