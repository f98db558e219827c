package archive

import "context"

// Storage persists opaque artifacts under a key.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// Config holds artifact storage configuration. When Bucket is empty the
// application falls back to local directory storage.
type Config struct {
	Bucket      string `env:"ARCHIVE_S3_BUCKET"`
	Region      string `env:"ARCHIVE_S3_REGION"`
	AccessKeyID string `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	SecretKey   string `env:"ARCHIVE_S3_SECRET_KEY"`
	Endpoint    string `env:"ARCHIVE_S3_ENDPOINT"` // for S3-compatible services
	LocalDir    string `env:"ARCHIVE_LOCAL_DIR" envDefault:"./tmp/archive"`
}
