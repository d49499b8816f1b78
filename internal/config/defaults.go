package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort        = 5001
	DefaultServerMode        = "release"
	DefaultServerMaxBodySize = 500 << 20
	DefaultReadTimeout       = 2 * time.Minute
	DefaultWriteTimeout      = 2 * time.Minute
	DefaultShutdownTimeout   = 15 * time.Second

	DefaultDBHost             = "localhost"
	DefaultDBPort             = 5432
	DefaultDBUser             = "legajos"
	DefaultDBName             = "legajos"
	DefaultDBSSLMode          = "disable"
	DefaultDBMaxConns         = 10
	DefaultDBMinConns         = 1
	DefaultDBConnMaxLifetime  = 30 * time.Minute
	DefaultDBConnMaxIdleTime  = 5 * time.Minute
	DefaultDBStatementTimeout = 30 * time.Second
	DefaultDBLockTimeout      = 10 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTimeout   = 3 * time.Second
	DefaultRedisKeyPrefix = "legajos:"

	DefaultMinIOBucket = "legajos-pdfs"

	DefaultUploadDir         = "uploads/pdfs"
	DefaultHammingThreshold  = 3
	DefaultTrimPageThreshold = 50
	DefaultHeadPages         = 3
	DefaultTailPages         = 3

	DefaultCookieName = "legajos_session"
	DefaultSessionTTL = 12 * time.Hour
	DefaultLoginRate  = 0.2
	DefaultLoginBurst = 5

	DefaultCORSMaxAge = 12 * time.Hour

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "legajos"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultAllowedExtensions lists the upload extensions accepted when none are
// configured.
var DefaultAllowedExtensions = []string{".pdf"}

// DefaultCORSOrigins are the office front-end origins.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://10.50.5.49:3000",
	"http://192.168.1.42:3000",
}

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
// upload.hamming_threshold is the exception: 0 is a valid exact-match
// threshold, so only a negative value takes the default. Call it after
// unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = DefaultDBMinConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = DefaultDBConnMaxIdleTime
	}
	if cfg.Database.StatementTimeout == 0 {
		cfg.Database.StatementTimeout = DefaultDBStatementTimeout
	}
	if cfg.Database.LockTimeout == 0 {
		cfg.Database.LockTimeout = DefaultDBLockTimeout
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Upload ────────────────────────────────────────────────────────────────
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = DefaultUploadDir
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
	if cfg.Upload.HammingThreshold < 0 {
		cfg.Upload.HammingThreshold = DefaultHammingThreshold
	}
	if cfg.Upload.TrimPageThreshold == 0 {
		cfg.Upload.TrimPageThreshold = DefaultTrimPageThreshold
	}
	if cfg.Upload.HeadPages == 0 {
		cfg.Upload.HeadPages = DefaultHeadPages
	}
	if cfg.Upload.TailPages == 0 {
		cfg.Upload.TailPages = DefaultTailPages
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = DefaultCookieName
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = DefaultSessionTTL
	}
	if cfg.Auth.LoginRate == 0 {
		cfg.Auth.LoginRate = DefaultLoginRate
	}
	if cfg.Auth.LoginBurst == 0 {
		cfg.Auth.LoginBurst = DefaultLoginBurst
	}

	// ── CORS ──────────────────────────────────────────────────────────────────
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = append([]string(nil), DefaultCORSOrigins...)
		cfg.CORS.AllowCredentials = true
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = DefaultCORSMaxAge
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
