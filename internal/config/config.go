package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the policy engine
type Config struct {
	Presets struct {
		// OverrideDir is consulted before the embedded built-in presets.
		// Empty selects <user config dir>/rufio/presets.
		OverrideDir string `env:"RUFIO_PRESETS_DIR"`
	}

	Cache struct {
		MaxSize int `env:"RUFIO_CACHE_MAX_SIZE" envDefault:"256" validate:"min=1"`
	}

	Engine struct {
		StatusThrottle time.Duration `env:"RUFIO_STATUS_THROTTLE" envDefault:"30s"`
	}

	Logging struct {
		Level  string `env:"RUFIO_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
		Format string `env:"RUFIO_LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	}
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if cfg.Presets.OverrideDir == "" {
		dir, err := defaultPresetsDir()
		if err != nil {
			return nil, err
		}
		cfg.Presets.OverrideDir = dir
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration using struct tags
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs additional validation beyond struct tags
func validateCustomRules(cfg *Config) error {
	if cfg.Presets.OverrideDir == "" {
		return fmt.Errorf("presets override directory cannot be empty")
	}

	if cfg.Engine.StatusThrottle < time.Second {
		return fmt.Errorf("status throttle must be at least 1 second")
	}

	return nil
}

// defaultPresetsDir places the override directory under the platform user
// config directory.
func defaultPresetsDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	return filepath.Join(base, "rufio", "presets"), nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
			}
		}
		return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
	}
	return err
}
