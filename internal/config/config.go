package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"shieldpool/internal/merkle"
	"shieldpool/internal/zk"
)

// Config application configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Admin    AdminConfig    `yaml:"admin"`
	Pool     PoolConfig     `yaml:"pool"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig message bus configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// AdminConfig admin authentication configuration
type AdminConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"passwordHash"` // bcrypt hash
	JWTSecret    string `yaml:"jwtSecret"`
	TokenTTL     int    `yaml:"tokenTTL"` // seconds
}

// PoolConfig defaults applied when a pool is initialized without explicit
// parameters.
type PoolConfig struct {
	TreeDepth       int    `yaml:"treeDepth"`
	RootHistorySize int    `yaml:"rootHistorySize"`
	HashAlgorithm   string `yaml:"hashAlgorithm"`
}

var AppConfig *Config

// LoadConfig reads the configuration file, applies defaults and
// environment-variable overrides, and installs the result as AppConfig.
func LoadConfig(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)
	overrideFromEnv(&config)

	if err := validate(&config); err != nil {
		return err
	}

	AppConfig = &config
	return nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Pool.TreeDepth == 0 {
		config.Pool.TreeDepth = 20
	}
	if config.Pool.RootHistorySize == 0 {
		config.Pool.RootHistorySize = merkle.DefaultRootHistorySize
	}
	if config.Pool.HashAlgorithm == "" {
		config.Pool.HashAlgorithm = zk.AlgorithmPoseidon2
	}
	if config.Admin.TokenTTL == 0 {
		config.Admin.TokenTTL = 3600
	}
}

func overrideFromEnv(config *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		config.Admin.JWTSecret = secret
	}
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		config.Admin.PasswordHash = hash
	}
}

func validate(config *Config) error {
	if config.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if config.Pool.TreeDepth < merkle.MinDepth || config.Pool.TreeDepth > merkle.MaxDepth {
		return fmt.Errorf("pool.treeDepth %d out of range [%d, %d]", config.Pool.TreeDepth, merkle.MinDepth, merkle.MaxDepth)
	}
	if config.Pool.RootHistorySize < merkle.MinRootHistorySize {
		return fmt.Errorf("pool.rootHistorySize %d below minimum %d", config.Pool.RootHistorySize, merkle.MinRootHistorySize)
	}
	if _, err := zk.NewHasher(config.Pool.HashAlgorithm); err != nil {
		return fmt.Errorf("pool.hashAlgorithm: %w", err)
	}
	return nil
}
