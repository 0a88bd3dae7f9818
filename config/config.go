package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSpoonacularBaseURL = "https://api.spoonacular.com"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string
	LogLevel    string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Recipe provider
	SpoonacularAPIKey  string
	SpoonacularBaseURL string

	// Plan sharing
	S3BucketName string
	AWSRegion    string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	// Load configuration based on environment
	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	applyDefaults(cfg)

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment using ONLY GitHub Actions secrets
func loadCIConfig(cfg *Config) error {
	loadEnv(cfg)

	// GitHub Actions secrets - use environment variables directly
	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" && cfg.DBDriver != DriverSQLite {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("TEST_REDIS_URL")
	cfg.SpoonacularAPIKey = os.Getenv("TEST_SPOONACULAR_API_KEY")

	return nil
}

// loadDevConfig reads an optional .env file, then the environment, then
// any Docker secrets that are present.
func loadDevConfig(cfg *Config) error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	loadEnv(cfg)
	applySecrets(cfg, true)
	return nil
}

// loadProdConfig loads configuration for production environment. Secrets
// only come from Docker secrets.
func loadProdConfig(cfg *Config) error {
	loadEnv(cfg)
	cfg.DBPassword = ""
	cfg.JWTSecret = ""
	cfg.RedisPassword = ""
	cfg.SpoonacularAPIKey = ""
	applySecrets(cfg, false)
	return nil
}

func loadEnv(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))

	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")

	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.SpoonacularAPIKey = os.Getenv("SPOONACULAR_API_KEY")
	cfg.SpoonacularBaseURL = os.Getenv("SPOONACULAR_BASE_URL")
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
}

// applySecrets overlays Docker secrets. With keepEnv a missing secret keeps
// the value already loaded from the environment.
func applySecrets(cfg *Config, keepEnv bool) {
	set := func(dst *string, name string) {
		if v := readSecret(name); v != "" || !keepEnv {
			*dst = v
		}
	}
	set(&cfg.DBUser, "db_user")
	set(&cfg.DBPassword, "db_password")
	set(&cfg.JWTSecret, "jwt_secret")
	set(&cfg.RedisPassword, "redis_password")
	set(&cfg.SpoonacularAPIKey, "spoonacular_api_key")

	// Non-secret values may also be provisioned as files
	overlay := func(dst *string, name string) {
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
	overlay(&cfg.DBHost, "db_host")
	overlay(&cfg.DBPort, "db_port")
	overlay(&cfg.DBName, "db_name")
	overlay(&cfg.DBSSLMode, "db_ssl_mode")
	overlay(&cfg.RedisHost, "redis_host")
	overlay(&cfg.RedisPort, "redis_port")
	overlay(&cfg.RedisURL, "redis_url")
	overlay(&cfg.ServerPort, "server_port")
	overlay(&cfg.ServerHost, "server_host")
}

func applyDefaults(cfg *Config) {
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverPostgres
	}
	if cfg.DBDriver == DriverSQLite && cfg.SQLitePath == "" {
		cfg.SQLitePath = "mealmate.db"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SpoonacularBaseURL == "" {
		cfg.SpoonacularBaseURL = defaultSpoonacularBaseURL
	}
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-east-1"
	}
}

// DatabaseURL returns the postgres connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
