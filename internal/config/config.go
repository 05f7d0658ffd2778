package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	SSLMode     string `yaml:"ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// StoreConfig selects the ledger backend
type StoreConfig struct {
	Type string `yaml:"type"` // "postgres" or "memory"
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BroadcastConfig contains realtime notification settings
type BroadcastConfig struct {
	WelcomeMessage   string `yaml:"welcome_message"`
	WriteWaitSeconds int    `yaml:"write_wait_seconds"`
	PongWaitSeconds  int    `yaml:"pong_wait_seconds"`
	MaxMessageBytes  int64  `yaml:"max_message_bytes"`
}

func (b BroadcastConfig) WriteWait() time.Duration {
	return time.Duration(b.WriteWaitSeconds) * time.Second
}

func (b BroadcastConfig) PongWait() time.Duration {
	return time.Duration(b.PongWaitSeconds) * time.Second
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	OverdueRentals string `yaml:"overdue_rentals"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

func (c *Config) applyDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = StorePostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Broadcast.WriteWaitSeconds == 0 {
		c.Broadcast.WriteWaitSeconds = 10
	}
	if c.Broadcast.PongWaitSeconds == 0 {
		c.Broadcast.PongWaitSeconds = 60
	}
	if c.Broadcast.MaxMessageBytes == 0 {
		c.Broadcast.MaxMessageBytes = 4096
	}
	if c.Scheduler.OverdueRentals == "" {
		c.Scheduler.OverdueRentals = "0 0 8 * * *" // 8 AM UTC
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validPort("HTTP", c.Server.HTTPPort); err != nil {
		return err
	}
	if err := validPort("gRPC", c.Server.GRPCPort); err != nil {
		return err
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return fmt.Errorf("HTTP and gRPC ports must differ")
	}

	switch c.Store.Type {
	case StorePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Log.Format)
	}

	// Pings go out at 90% of the pong wait, so the write wait must fit inside it.
	if c.Broadcast.PongWaitSeconds > 0 && c.Broadcast.WriteWaitSeconds >= c.Broadcast.PongWaitSeconds {
		return fmt.Errorf("broadcast write wait must be shorter than pong wait")
	}
	if c.Broadcast.MaxMessageBytes < 0 {
		return fmt.Errorf("broadcast max message bytes must not be negative")
	}

	return nil
}

func validPort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid %s port: %d", name, port)
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

// GetHTTPAddress returns the REST and websocket listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
