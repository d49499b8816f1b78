// Package config defines the configuration structures of the legajos backend.
// Only plain data types and validation live here; loading is in loader.go.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxConns         int           `mapstructure:"max_conns"`
	MinConns         int           `mapstructure:"min_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds the session-store connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig configures the optional object-storage mirror of persisted PDFs.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// UploadConfig drives the bulk-upload deduplication pipeline.
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	HammingThreshold  int      `mapstructure:"hamming_threshold"`
	TrimPageThreshold int      `mapstructure:"trim_page_threshold"`
	HeadPages         int      `mapstructure:"head_pages"`
	TailPages         int      `mapstructure:"tail_pages"`
	// TieBreakSeed seeds the random choice among page-count ties. Zero means
	// a fresh seed per process, which is logged at startup.
	TieBreakSeed uint64 `mapstructure:"tie_break_seed"`
	// DownloadBases are extra directories, besides Dir, that downloads may
	// be served from.
	DownloadBases []string `mapstructure:"download_bases"`
}

// UserConfig is one entry of the staff user table.
type UserConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"` // "admin" | "user"
	Attorney     string `mapstructure:"attorney"`
	// EditLocked removes every editable field from an admin.
	EditLocked bool `mapstructure:"edit_locked"`
	// DenyFields subtracts front-end fields from an admin's editable set.
	DenyFields []string `mapstructure:"deny_fields"`
}

// AuthConfig holds the user table and session cookie settings.
type AuthConfig struct {
	Users        []UserConfig  `mapstructure:"users"`
	CookieName   string        `mapstructure:"cookie_name"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	// LoginRate is the sustained login attempts per second allowed from one
	// client address; LoginBurst is the bucket size.
	LoginRate  float64 `mapstructure:"login_rate"`
	LoginBurst int     `mapstructure:"login_burst"`
}

// CORSConfig lists the front-end origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	MinIO    MinIOConfig       `mapstructure:"minio"`
	Upload   UploadConfig      `mapstructure:"upload"`
	Auth     AuthConfig        `mapstructure:"auth"`
	CORS     CORSConfig        `mapstructure:"cors"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Log      logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a defaulted Config and returns the
// first problem found.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 1 {
		return fmt.Errorf("config: server.max_body_size must be ≥ 1, got %d", c.Server.MaxBodySize)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("config: database.min_conns %d exceeds max_conns %d", c.Database.MinConns, c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio.enabled is true")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio.enabled is true")
		}
	}

	// Upload
	if strings.TrimSpace(c.Upload.Dir) == "" {
		return fmt.Errorf("config: upload.dir is required")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("config: upload.allowed_extensions must not be empty")
	}
	if c.Upload.HammingThreshold < 0 || c.Upload.HammingThreshold > 64 {
		return fmt.Errorf("config: upload.hamming_threshold %d is out of range [0, 64]", c.Upload.HammingThreshold)
	}
	if c.Upload.TrimPageThreshold < 1 {
		return fmt.Errorf("config: upload.trim_page_threshold must be ≥ 1, got %d", c.Upload.TrimPageThreshold)
	}
	if c.Upload.HeadPages < 1 || c.Upload.TailPages < 1 {
		return fmt.Errorf("config: upload.head_pages and upload.tail_pages must be ≥ 1")
	}

	// Auth
	seen := make(map[string]struct{}, len(c.Auth.Users))
	for i, u := range c.Auth.Users {
		if u.Username == "" {
			return fmt.Errorf("config: auth.users[%d].username is required", i)
		}
		if _, dup := seen[u.Username]; dup {
			return fmt.Errorf("config: auth.users[%d].username %q is duplicated", i, u.Username)
		}
		seen[u.Username] = struct{}{}
		switch u.Role {
		case "admin", "user":
		default:
			return fmt.Errorf("config: auth.users[%d].role %q is invalid; expected admin|user", i, u.Role)
		}
		if !strings.HasPrefix(u.PasswordHash, "$2") {
			return fmt.Errorf("config: auth.users[%d].password_hash must be a bcrypt hash", i)
		}
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("config: auth.cookie_name is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: auth.session_ttl must be positive")
	}
	if c.Auth.LoginRate < 0 || c.Auth.LoginBurst < 0 {
		return fmt.Errorf("config: auth.login_rate and auth.login_burst must be ≥ 0")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
