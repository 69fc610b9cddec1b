package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"HoneyBear"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"honeybear.db"`
	}

	Currency struct {
		// Target is the display currency used when an account or caller does
		// not specify one.
		Target string `envconfig:"TARGET_CURRENCY" default:"USD"`
	}

	Feed struct {
		BaseURL string        `envconfig:"FEED_BASE_URL" default:"https://query1.finance.yahoo.com"`
		Timeout time.Duration `envconfig:"FEED_TIMEOUT" default:"15s"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
