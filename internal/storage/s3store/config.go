// Package s3store provides a MinIO/S3-compatible storage adapter.
package s3store

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/minio/minio-go/v7"
)

// Config holds S3 connection settings.
type Config struct {
	// Endpoint is the server address, e.g. "localhost:9000".
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	// Prefix namespaces every object key.
	Prefix string `yaml:"prefix"`

	// Client is an optional pre-configured client. When set, the
	// connection fields are ignored.
	Client *minio.Client `yaml:"-"`
}

// Validate checks that either Client or the full set of connection
// fields is present. Bucket is always required.
func (c *Config) Validate() error {
	needConn := c.Client == nil
	return validation.ValidateStruct(c,
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.Endpoint, validation.When(needConn, validation.Required)),
		validation.Field(&c.AccessKey, validation.When(needConn, validation.Required)),
		validation.Field(&c.SecretKey, validation.When(needConn, validation.Required)),
	)
}
