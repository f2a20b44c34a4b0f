package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SCPrime/ai-Trader-sub001/pkg/secrets"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Health  HealthConfig  `mapstructure:"health"`
	Journal JournalConfig `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
	GCP     GCPConfig     `mapstructure:"gcp"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type ProxyConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// AuthType selects how requests to the backend are signed:
	// "none", "apikey" or "jwt".
	AuthType      string `mapstructure:"auth_type"`
	APIToken      string `mapstructure:"api_token"`
	APIKeyName    string `mapstructure:"api_key_name"`
	PrivateKeyPEM string `mapstructure:"private_key_pem"`

	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
}

type HealthConfig struct {
	Interval int `mapstructure:"interval"` // seconds
}

func (h HealthConfig) IntervalDuration() time.Duration {
	return time.Duration(h.Interval) * time.Second
}

type JournalConfig struct {
	Backend  string         `mapstructure:"backend"` // "memory", "file", "redis" or "postgres"
	Path     string         `mapstructure:"path"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type GCPConfig struct {
	ProjectID       string              `mapstructure:"project_id"`
	UseSecrets      bool                `mapstructure:"use_secrets"`
	CredentialsFile string              `mapstructure:"credentials_file"`
	SecretNames     secrets.SecretNames `mapstructure:"secret_names"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ai-trader")
	}

	// Read environment variables
	v.SetEnvPrefix("AITRADER")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override with environment variables if set
	overrideFromEnv(&config)

	// Load secrets from GCP if enabled
	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)

	// Proxy defaults
	v.SetDefault("proxy.base_url", "http://localhost:3000")
	v.SetDefault("proxy.auth_type", "none")
	v.SetDefault("proxy.requests_per_sec", 5.0)

	// Health defaults
	v.SetDefault("health.interval", 30)

	// Journal defaults
	v.SetDefault("journal.backend", "file")
	v.SetDefault("journal.path", "./data/order_history.json")
	v.SetDefault("journal.redis.addr", "localhost:6379")
	v.SetDefault("journal.redis.password", "")
	v.SetDefault("journal.redis.db", 0)
	v.SetDefault("journal.postgres.dsn", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	// GCP defaults
	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")
	v.SetDefault("gcp.credentials_file", "")

	// Secret name defaults
	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.api_token", secretNames.APIToken)
	v.SetDefault("gcp.secret_names.api_key_name", secretNames.APIKeyName)
	v.SetDefault("gcp.secret_names.private_key", secretNames.PrivateKey)
}

func overrideFromEnv(config *Config) {
	// Backend proxy settings from environment
	if baseURL := os.Getenv("AITRADER_PROXY_URL"); baseURL != "" {
		config.Proxy.BaseURL = baseURL
	}
	if token := os.Getenv("AITRADER_API_TOKEN"); token != "" {
		config.Proxy.APIToken = token
	}
	if authType := os.Getenv("AITRADER_AUTH_TYPE"); authType != "" {
		config.Proxy.AuthType = authType
	}
	if apiKeyName := os.Getenv("AITRADER_API_KEY_NAME"); apiKeyName != "" {
		config.Proxy.APIKeyName = apiKeyName
	}
	if privateKey := os.Getenv("AITRADER_PRIVATE_KEY"); privateKey != "" {
		config.Proxy.PrivateKeyPEM = privateKey
	}

	// GCP configuration from environment
	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, config.GCP.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets if they're not already set
	if config.Proxy.APIToken == "" {
		config.Proxy.APIToken = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.APIToken, "")
	}
	if config.Proxy.APIKeyName == "" {
		config.Proxy.APIKeyName = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.APIKeyName, "")
	}
	if config.Proxy.PrivateKeyPEM == "" {
		config.Proxy.PrivateKeyPEM = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.PrivateKey, "")
	}

	logger.Info("Successfully loaded secrets from GCP Secret Manager")
	return nil
}
