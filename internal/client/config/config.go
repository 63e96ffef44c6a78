// Package config holds the docshare CLI settings.
package config

import (
	"flag"
	"io"
	"time"
)

// Config holds runtime settings for the docshare CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP endpoint.
//   - SessionFile: where tokens from signup/login are kept between runs.
//   - DownloadDir: destination directory for downloads.
//   - Timeout: per request timeout; zero disables it.
type Config struct {
	ServerURL   string
	SessionFile string
	DownloadDir string
	Timeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.SessionFile = ".docshare-session.json"
	c.DownloadDir = "downloads"
	c.Timeout = 0
}

// LoadConfig applies defaults and then the leading flags of args. Parsing
// stops at the first non-flag argument; it and everything after it are
// returned as the command line of the subcommand.
//
// Supported flags:
//
//	-a string        server base URL
//	-session string  session file
//	-o string        download directory
//	-timeout duration
func LoadConfig(args []string, output io.Writer) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := flag.NewFlagSet("docshare", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.SessionFile, "session", cfg.SessionFile, "session file")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout (0 = none)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}
