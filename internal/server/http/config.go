package http

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultReadTimeout is the default timeout for reading the entire request.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default timeout for writing the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the default timeout for idle connections.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	// This is critical for preventing slow loris attacks.
	DefaultReadHeaderTimeout = 5 * time.Second
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	// Defaults to 8080 if not set.
	Port int `json:"port" yaml:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Defaults to 10 seconds.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Defaults to 30 seconds.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. Defaults to 120 seconds.
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	// This is critical for preventing slow loris attacks.
	// Defaults to 5 seconds.
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout" mapstructure:"read_header_timeout"`

	// CORS configures cross-origin access for browser-based clients (the web
	// UI, or any third-party dashboard). Defaults to allowing any origin,
	// GET/POST/DELETE, with no credentials.
	CORS CORSConfig `json:"cors" yaml:"cors" mapstructure:"cors"`
}

// CORSConfig mirrors the subset of rs/cors.Options this server exposes.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods" yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers" yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials" mapstructure:"allow_credentials"`
}

// DefaultCORSConfig returns a permissive-but-sane default: any origin, the
// methods this API actually uses, no credentials.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// DefaultConfig returns a Config with safe defaults.
// The timeout values are chosen to balance responsiveness with protection
// against slow loris and similar attacks.
func DefaultConfig() Config {
	return Config{
		Port:              DefaultPort,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		CORS:              DefaultCORSConfig(),
	}
}

// SetDefaults applies default values to zero-value fields.
// Implements the config.Defaulter interface.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if len(c.CORS.AllowedOrigins) == 0 && len(c.CORS.AllowedMethods) == 0 && len(c.CORS.AllowedHeaders) == 0 {
		c.CORS = DefaultCORSConfig()
	}
}

// Validate checks that the configuration is valid. Port 0 is allowed and
// means auto-assign (the OS picks a free port, discoverable afterward via
// Server.BoundPort).
// Implements the config.Validator interface.
func (c *Config) Validate() error {
	if c.Port < 0 {
		return errors.New("http: port must be greater than or equal to 0")
	}
	if c.Port > 65535 {
		return errors.New("http: port must be less than or equal to 65535")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("http: read_timeout must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("http: write_timeout must be greater than 0")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("http: idle_timeout must be greater than 0")
	}
	if c.ReadHeaderTimeout <= 0 {
		return errors.New("http: read_header_timeout must be greater than 0")
	}
	return nil
}
