package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the loaded configuration using struct tags.
// It reports every failing field at once so a misconfigured deployment
// can be fixed in one pass instead of one restart per variable.
func Validate(cfg *Config) error {
	v := validator.New()
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("config validation: %w", err)
	}

	var problems []string
	for _, fieldErr := range validationErrors {
		problems = append(problems, describeFieldError(fieldErr))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// describeFieldError maps a validator error to the env var the operator set
func describeFieldError(fe validator.FieldError) string {
	name := envVarForField(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", name)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

var fieldToEnvVar = map[string]string{
	"Port":            "PORT",
	"APIKey":          "API_KEY",
	"StateDir":        "STATE_DIR",
	"VaultPassphrase": "VAULT_PASSPHRASE",
	"StateSigningKey": "STATE_SIGNING_KEY",
	"ClientID":        "PLATFORM_CLIENT_ID",
	"RedirectURL":     "PLATFORM_REDIRECT_URL",
	"AuthorizeURL":    "PLATFORM_AUTHORIZE_URL",
	"TokenURL":        "PLATFORM_TOKEN_URL",
	"APIBaseURL":      "PLATFORM_API_BASE_URL",
	"Scopes":          "PLATFORM_SCOPES",
	"PollInterval":    "POLL_INTERVAL",
	"BatchSize":       "BATCH_SIZE",
	"ManualCooldown":  "MANUAL_COOLDOWN",
}

func envVarForField(field string) string {
	if env, ok := fieldToEnvVar[field]; ok {
		return env
	}
	return field
}
