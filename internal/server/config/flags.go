package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret
//	-t int      access token validity, minutes
//	-n int      nonce validity, seconds
//	-m string   metadata backend (postgres|s3)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-q string   NATS URL
//	-l string   log format (json|text|console)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-n", "-m", "-u", "-p", "-b", "-g", "-e", "-q", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	nonceValidity := fs.Int("n", int(config.NonceValidityDuration.Seconds()), "nonce validity (in seconds)")

	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend: postgres or s3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.NatsURL, "q", config.NatsURL, "NATS URL for message notifications")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format: json, text or console")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.NonceValidityDuration = time.Duration(*nonceValidity) * time.Second
}
