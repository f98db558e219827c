package push

// Config holds FCM configuration. CredentialsFile points at a Google
// service account JSON key with the firebase.messaging scope.
type Config struct {
	ProjectID       string `env:"FCM_PROJECT_ID"`
	CredentialsFile string `env:"FCM_CREDENTIALS_FILE"`
	DevDir          string `env:"PUSH_DEV_DIR" envDefault:"./tmp/push"`
}
