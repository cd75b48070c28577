package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port     int    `validate:"min=1,max=65535"`
	APIKey   string `validate:"required"` // operator credential for the control surface
	StateDir string `validate:"required"` // holds the credential record and the checkpoint file

	// Credential vault
	VaultPassphrase string `validate:"required"`

	// Authorization flow
	StateSigningKey string `validate:"required,min=16"` // keys the HMAC over the state token
	ClientID        string `validate:"required"`
	RedirectURL     string `validate:"required,url"`
	AuthorizeURL    string `validate:"required,url"`
	TokenURL        string `validate:"required,url"`
	APIBaseURL      string `validate:"required,url"`
	Scopes          string `validate:"required"`

	// Ingestion
	PollInterval   time.Duration `validate:"min=30s"`
	BatchSize      int           `validate:"min=1,max=10"`
	ManualCooldown time.Duration `validate:"min=0"`
	ReplyTemplate  string        // empty selects the built-in template

	// Logging
	LogLevel    string
	LogFormat   string
	ServiceName string
	Version     string
	Environment string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:          getEnv("API_KEY", ""),
		StateDir:        getEnv("STATE_DIR", "state"),
		VaultPassphrase: getEnv("VAULT_PASSPHRASE", ""),
		StateSigningKey: getEnv("STATE_SIGNING_KEY", ""),
		ClientID:        getEnv("PLATFORM_CLIENT_ID", ""),
		RedirectURL:     getEnv("PLATFORM_REDIRECT_URL", ""),
		AuthorizeURL:    getEnv("PLATFORM_AUTHORIZE_URL", DefaultAuthorizeURL),
		TokenURL:        getEnv("PLATFORM_TOKEN_URL", DefaultTokenURL),
		APIBaseURL:      getEnv("PLATFORM_API_BASE_URL", DefaultAPIBaseURL),
		Scopes:          getEnv("PLATFORM_SCOPES", DefaultScopes),
		ReplyTemplate:   getEnv("REPLY_TEMPLATE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		ServiceName:     getEnv("SERVICE_NAME", DefaultServiceName),
		Version:         getEnv("SERVICE_VERSION", "dev"),
		Environment:     getEnv("ENVIRONMENT", "dev"),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	batchStr := getEnv("BATCH_SIZE", strconv.Itoa(DefaultBatchSize))
	batch, err := strconv.Atoi(batchStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_SIZE value: %w", err)
	}
	cfg.BatchSize = batch

	cfg.PollInterval, err = getDuration("POLL_INTERVAL", DefaultPollInterval)
	if err != nil {
		return nil, err
	}

	cfg.ManualCooldown, err = getDuration("MANUAL_COOLDOWN", DefaultManualCooldown)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDuration retrieves a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}
