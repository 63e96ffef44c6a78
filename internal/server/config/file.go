package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docshare/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for JSON and YAML files. Durations accept
// strings such as "15m" or integer nanoseconds. Absent fields keep their
// previous value.
type FileConfig struct {
	EndpointAddrHTTP             string          `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             string          `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                  string          `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string          `json:"secret_key" yaml:"secret_key"`
	CipherKey                    string          `json:"cipher_key" yaml:"cipher_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	EmailTokenValidityDuration   *timex.Duration `json:"email_token_validity_duration" yaml:"email_token_validity_duration"`
	LinkValidityDuration         *timex.Duration `json:"link_validity_duration" yaml:"link_validity_duration"`
	BaseURL                      string          `json:"base_url" yaml:"base_url"`
	StorageBackend               string          `json:"storage_backend" yaml:"storage_backend"`
	UploadDir                    string          `json:"upload_dir" yaml:"upload_dir"`
	MaxUploadSize                int64           `json:"max_upload_size" yaml:"max_upload_size"`
	LogLevel                     string          `json:"log_level" yaml:"log_level"`
	S3RootUser                   string          `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string          `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string          `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile overlays values from a .json, .yaml or .yml file.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config file type %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	c.apply(config)
	return nil
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CipherKey, c.CipherKey)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.EmailTokenValidityDuration != nil {
		config.EmailTokenValidityDuration = c.EmailTokenValidityDuration.Duration
	}
	if c.LinkValidityDuration != nil {
		config.LinkValidityDuration = c.LinkValidityDuration.Duration
	}
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
