package billing

import "time"

type Config struct {
	APIKey  string        `env:"REVENUECAT_API_KEY"`
	BaseURL string        `env:"REVENUECAT_BASE_URL" envDefault:"https://api.revenuecat.com/v1"`
	Timeout time.Duration `env:"REVENUECAT_TIMEOUT" envDefault:"15s"`
}
