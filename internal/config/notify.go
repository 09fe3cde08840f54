package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type NotifyConfig struct {
	Enabled             bool          `env:"ENABLED" envDefault:"false"`
	Workers             int           `env:"WORKERS" envDefault:"4"`
	DispatchBuffer      int           `env:"DISPATCH_BUFFER" envDefault:"2048"`
	RetryMax            int           `env:"RETRY_MAX" envDefault:"3"`
	RetryBase           time.Duration `env:"RETRY_BASE" envDefault:"500ms"`
	FailureThreshold    int           `env:"FAILURE_THRESHOLD" envDefault:"3"`
	CircuitOpenDuration time.Duration `env:"CIRCUIT_OPEN_DURATION" envDefault:"30s"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	WhatsAppAPIURL        string `env:"WHATSAPP_API_URL" envDefault:"https://graph.facebook.com/v19.0"`
	WhatsAppPhoneNumberID string `env:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppAccessToken   string `env:"WHATSAPP_ACCESS_TOKEN"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"betting.notifications"`
}

func LoadNotify() (NotifyConfig, error) {
	var cfg NotifyConfig
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: "NOTIFY_"})
	return cfg, err
}
