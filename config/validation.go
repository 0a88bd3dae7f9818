package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// secretNames is where each sensitive value is expected to come from.
var secretNames = map[Environment]map[string]string{
	CI: {
		"db_password":         "TEST_DB_PASSWORD",
		"jwt_secret":          "TEST_JWT_SECRET",
		"spoonacular_api_key": "TEST_SPOONACULAR_API_KEY",
	},
}

func secretName(env Environment, name string) string {
	if n, ok := secretNames[env][name]; ok {
		return n
	}
	if env == Production {
		return name + " secret"
	}
	return strings.ToUpper(name)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []string
	require := func(value, field string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"}.Error())
		}
	}

	require(cfg.ServerPort, "SERVER_PORT")
	require(cfg.JWTSecret, secretName(env, "jwt_secret"))

	switch cfg.DBDriver {
	case DriverPostgres:
		require(cfg.DBHost, "DB_HOST")
		require(cfg.DBPort, "DB_PORT")
		require(cfg.DBName, "DB_NAME")
		require(cfg.DBUser, secretName(env, "db_user"))
		require(cfg.DBPassword, secretName(env, "db_password"))
	case DriverSQLite:
		require(cfg.SQLitePath, "SQLITE_PATH")
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	// Quota state and live updates need Redis outside development
	if env == Production || env == CI {
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			errs = append(errs, ValidationError{Field: "REDIS_URL", Message: "REDIS_URL or REDIS_HOST is required"}.Error())
		}
	}
	if env == Production {
		require(cfg.SpoonacularAPIKey, secretName(env, "spoonacular_api_key"))
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "LOG_LEVEL", Message: err.Error()}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
