package config

import (
	"flag"

	"github.com/dmitrijs2005/docshare/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g., ":8080")
//	-grpc string     gRPC bind address (e.g., ":50051")
//	-d string        PostgreSQL DSN
//	-s string        identity token HMAC secret
//	-k string        base64 link cipher key (32 bytes)
//	-t duration      access token validity
//	-r duration      refresh token validity
//	-m duration      email verification token validity
//	-l duration      download link validity (0 = never expires)
//	-base-url string public URL prefix for download links
//	-storage string  storage backend: local or s3
//	-upload-dir string
//	-max-upload int  upload size limit in bytes
//	-log-level string
//	-u, -p, -b, -g, -e  S3 user, password, bucket, region, base endpoint
//
// Unrecognized arguments (such as -c) are filtered out with flagx.Restrict
// before parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CipherKey, "k", config.CipherKey, "link cipher key (base64, 32 bytes)")

	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.DurationVar(&config.RefreshTokenValidityDuration, "r", config.RefreshTokenValidityDuration, "refresh token validity")
	fs.DurationVar(&config.EmailTokenValidityDuration, "m", config.EmailTokenValidityDuration, "email verification token validity")
	fs.DurationVar(&config.LinkValidityDuration, "l", config.LinkValidityDuration, "download link validity, 0 = never expires")

	fs.StringVar(&config.BaseURL, "base-url", config.BaseURL, "public URL prefix for download links")
	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "storage backend: local or s3")
	fs.StringVar(&config.UploadDir, "upload-dir", config.UploadDir, "directory for the local storage backend")
	fs.Int64Var(&config.MaxUploadSize, "max-upload", config.MaxUploadSize, "upload size limit in bytes")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level: debug, info, warn, error")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(flagx.Restrict(args, fs))
}
