// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultTokenTTL is the lifetime of access tokens when none is configured.
const DefaultTokenTTL = time.Hour

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Config is the path to the Config file.
	Config string `env:"CONFIG"`

	// JWTSecret is the HMAC key used to sign and verify access tokens.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is how long an issued access token stays valid.
	TokenTTL time.Duration `env:"JWT_TTL"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `env:"TLS_CERT"`
	TLSKey  string `env:"TLS_KEY"`

	// LogLevel is a zap level name such as "debug" or "info".
	LogLevel string `env:"LOG_LEVEL"`
}

// fileOptions mirrors the JSON config file. Absent keys keep the value
// already set by flags.
type fileOptions struct {
	ServerAddress *string `json:"server_address"`
	DatabaseDSN   *string `json:"database_dsn"`
	JWTSecret     *string `json:"jwt_secret"`
	TokenTTL      *string `json:"jwt_ttl"`
	TLSCert       *string `json:"tls_cert"`
	TLSKey        *string `json:"tls_key"`
	LogLevel      *string `json:"log_level"`
}

// Load builds Options from args (without the program name), then the JSON
// config file if it exists, then environment variables. Later sources win.
func Load(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("taskkeeper", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.JWTSecret, "s", "", "secret used to sign access tokens")
	fs.DurationVar(&options.TokenTTL, "ttl", DefaultTokenTTL, "access token lifetime")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := options.loadFile(); err != nil {
		return nil, err
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("error while parsing environment: %w", err)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func (o *Options) loadFile() error {
	if o.Config == "" {
		return nil
	}
	if _, err := os.Stat(o.Config); err != nil {
		return nil
	}

	data, err := os.ReadFile(o.Config)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&o.Port, f.ServerAddress)
	set(&o.DatabaseDSN, f.DatabaseDSN)
	set(&o.JWTSecret, f.JWTSecret)
	set(&o.TLSCert, f.TLSCert)
	set(&o.TLSKey, f.TLSKey)
	set(&o.LogLevel, f.LogLevel)
	if f.TokenTTL != nil {
		ttl, err := time.ParseDuration(*f.TokenTTL)
		if err != nil {
			return fmt.Errorf("error while parsing config file: jwt_ttl: %w", err)
		}
		o.TokenTTL = ttl
	}
	return nil
}

// Validate reports configuration the server cannot start with.
func (o *Options) Validate() error {
	var errs []error
	if o.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required (-s or JWT_SECRET)"))
	}
	if o.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		errs = append(errs, errors.New("tls cert and key must be set together"))
	}
	return errors.Join(errs...)
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
