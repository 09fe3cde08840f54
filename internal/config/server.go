package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	// AdminAPIKey guards /api/admin; GatewayAPIKey guards the chat gateway
	// routes. An empty key leaves its group open, which is only meant for
	// local runs.
	AdminAPIKey   string `env:"ADMIN_API_KEY"`
	GatewayAPIKey string `env:"GATEWAY_API_KEY"`

	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
