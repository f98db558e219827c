package email

// Config holds email service configuration.
// Postmark tokens are optional to support development environments where
// real email sending is disabled and DevSender is used instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"hello@fidusai.tech"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"hello@fidusai.tech"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}
