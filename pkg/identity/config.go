package identity

import "time"

type Config struct {
	ProjectID       string        `env:"IDENTITY_PROJECT_ID"`
	CredentialsFile string        `env:"IDENTITY_CREDENTIALS_FILE"`
	BaseURL         string        `env:"IDENTITY_BASE_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`
	Timeout         time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`
}
