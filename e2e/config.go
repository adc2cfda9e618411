package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_LOG_LEVEL controls the store logger during scenarios
	LogLevel string `envconfig:"E2E_LOG_LEVEL" default:"ERROR"`
	// E2E_WRITERS is the number of concurrent writers in the contention scenario
	Writers int `envconfig:"E2E_WRITERS" default:"8"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
