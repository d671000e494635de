package config

import "time"

// Config holds server configuration values.
type Config struct {
	// Addr is the TCP listen address for relay clients.
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required"`
	// ServerName prefixes every server-originated line.
	ServerName string `mapstructure:"server_name" yaml:"server_name" validate:"required,max=63"`
	// HTTPAddr serves the status API and the WebSocket bridge. Empty disables it.
	HTTPAddr string `mapstructure:"http_addr" yaml:"http_addr"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gte=0"`

	// MaxLineBytes caps a single inbound line; longer lines end the connection.
	MaxLineBytes int `mapstructure:"max_line_bytes" yaml:"max_line_bytes" validate:"gte=512,lte=65536"`
	// OutboxBytes caps output queued for one connection; lines past it are dropped for that connection.
	OutboxBytes int `mapstructure:"outbox_bytes" yaml:"outbox_bytes" validate:"gte=4096"`

	// DatabasePath enables the session journal when set.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// AdminJWTSecret protects /api/* when set.
	AdminJWTSecret string        `mapstructure:"admin_jwt_secret" yaml:"admin_jwt_secret"`
	AdminJWTIssuer string        `mapstructure:"admin_jwt_issuer" yaml:"admin_jwt_issuer"`
	AdminTokenTTL  time.Duration `mapstructure:"admin_token_ttl" yaml:"admin_token_ttl" validate:"gt=0"`
	// AdminPasswordHash is a bcrypt hash enabling POST /api/token.
	AdminPasswordHash string `mapstructure:"admin_password_hash" yaml:"admin_password_hash"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":6667",
		ServerName:        "wirechat",
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		LogFormat:         "console",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxLineBytes:      512,
		OutboxBytes:       1 << 20,
		AdminJWTIssuer:    "wirechat-irc",
		AdminTokenTTL:     12 * time.Hour,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ServerName != "" {
		c.ServerName = other.ServerName
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.MaxLineBytes != 0 {
		c.MaxLineBytes = other.MaxLineBytes
	}
	if other.OutboxBytes != 0 {
		c.OutboxBytes = other.OutboxBytes
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.AdminJWTSecret != "" {
		c.AdminJWTSecret = other.AdminJWTSecret
	}
	if other.AdminJWTIssuer != "" {
		c.AdminJWTIssuer = other.AdminJWTIssuer
	}
	if other.AdminTokenTTL != 0 {
		c.AdminTokenTTL = other.AdminTokenTTL
	}
	if other.AdminPasswordHash != "" {
		c.AdminPasswordHash = other.AdminPasswordHash
	}
}
