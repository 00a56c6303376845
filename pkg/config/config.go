package config

import (
	"fmt"
	"time"
)

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr    string `env:"OPENSHELF_HTTP_ADDR" env-default:":4000"`
	BaseURL string `env:"OPENSHELF_BASE_URL" env-default:"http://localhost:4000"`
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"OPENSHELF_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"OPENSHELF_PG_PORT" env-default:"5432"`
	Database string `env:"OPENSHELF_PG_DATABASE" env-default:"openshelf_db"`
	User     string `env:"OPENSHELF_PG_USER" env-default:"openshelf"`
	Password string `env:"OPENSHELF_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"OPENSHELF_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// JWTConfig holds the session credential settings
type JWTConfig struct {
	Secret        string        `env:"OPENSHELF_JWT_SECRET" env-required:"true"`
	Issuer        string        `env:"OPENSHELF_JWT_ISSUER" env-default:"openshelf"`
	Audience      string        `env:"OPENSHELF_JWT_AUDIENCE" env-default:"openshelf"`
	SessionExpiry time.Duration `env:"OPENSHELF_SESSION_EXPIRY" env-default:"8760h"`
	CookieSecure  bool          `env:"OPENSHELF_COOKIE_SECURE" env-default:"false"`
}

// EmailConfig holds the SMTP settings for the notification sender
type EmailConfig struct {
	Host     string `env:"OPENSHELF_SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"OPENSHELF_SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"OPENSHELF_SMTP_TLS" env-default:"false"`
	Username string `env:"OPENSHELF_SMTP_USERNAME"`
	Password string `env:"OPENSHELF_SMTP_PASSWORD"`
	From     string `env:"OPENSHELF_SMTP_FROM" env-default:"noreply@openshelf.local"`
}

// Config is the aggregate configuration for the openshelf server
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
}
