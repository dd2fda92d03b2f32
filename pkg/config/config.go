package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the PropertyConnect engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Chat completion configuration
	Chat ChatConfig `yaml:"chat"`

	// Ethereum notary configuration
	Ethereum EthereumConfig `yaml:"ethereum"`

	// Map/places enrichment configuration
	Places PlacesConfig `yaml:"places"`

	// Rate limiting for auth-sensitive routes
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	// JWTSecret signs issued bearer tokens. Server fails to start without it.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML

	// TokenTTLHours is how long issued tokens remain valid.
	TokenTTLHours int `yaml:"token_ttl_hours" env:"TOKEN_TTL_HOURS" env-default:"24"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"propertyconnect"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"propertyconnect"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds the connection string for pgx and golang-migrate.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// ChatConfig holds the OpenAI-compatible completion endpoint settings.
type ChatConfig struct {
	Endpoint string `yaml:"endpoint" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
}

// IsAvailable returns true if the chat endpoint is usable.
func (c *ChatConfig) IsAvailable() bool {
	return c.APIKey != ""
}

// EthereumConfig holds the outbound notary provider settings.
// When RPCURL is empty the notary runs in simulated mode.
type EthereumConfig struct {
	RPCURL          string `yaml:"rpc_url" env:"ETHEREUM_RPC_URL" env-default:""`
	ContractAddress string `yaml:"contract_address" env:"CONTRACT_ADDRESS" env-default:""`
	PrivateKey      string `yaml:"-" env:"ETHEREUM_PRIVATE_KEY"` // Secret - not in YAML
}

// PlacesConfig holds the map-provider settings for local-insight enrichment.
type PlacesConfig struct {
	APIKey  string `yaml:"-" env:"MAPS_API_KEY"` // Secret - not in YAML
	BaseURL string `yaml:"base_url" env:"MAPS_BASE_URL" env-default:"https://maps.googleapis.com/maps/api"`
}

// RateLimitConfig bounds request rates on register/login and blockchain writes.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM" env-default:"20"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"5"`
}

// Load reads configuration from config.yaml (if present) and environment variables.
func Load(version string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Version = version

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("token TTL must be positive, got %d", c.Auth.TokenTTLHours)
	}
	if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}
