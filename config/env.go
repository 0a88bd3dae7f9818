package config

import (
	"os"
	"strings"
)

// Environment is the deployment the process runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads the environment from CI, then APP_ENV, then ENV.
// Anything unrecognised is development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	name := os.Getenv("APP_ENV")
	if name == "" {
		name = os.Getenv("ENV")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// GinMode maps the environment onto gin's run modes.
func (e Environment) GinMode() string {
	switch e {
	case Production:
		return "release"
	case Test, CI:
		return "test"
	default:
		return "debug"
	}
}

func IsCI() bool {
	return GetEnvironment() == CI
}

func IsProduction() bool {
	return GetEnvironment() == Production
}
