package config

import (
	"github.com/dmitrijs2005/walletmeta/internal/flagx"
	"github.com/dmitrijs2005/walletmeta/internal/timex"
)

// FileConfig is the on-disk shape of the server configuration. Both JSON and
// YAML files are accepted; durations may be strings ("90s") or nanoseconds.
type FileConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	NonceValidityDuration       timex.Duration `json:"nonce_validity_duration" yaml:"nonce_validity_duration"`
	MetadataBackend             string         `json:"metadata_backend" yaml:"metadata_backend"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	NatsURL                     string         `json:"nats_url" yaml:"nats_url"`
	LogFormat                   string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays values from the file named by -c/-config. Fields absent
// from the file keep their current value. An unreadable or malformed file
// panics, as startup cannot continue with a half-read configuration.
func parseFile(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	c := &FileConfig{}
	if err := flagx.DecodeConfigFile(path, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.NonceValidityDuration.Duration > 0 {
		config.NonceValidityDuration = c.NonceValidityDuration.Duration
	}
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.NatsURL, c.NatsURL)
	setString(&config.LogFormat, c.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
