package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "LEGAJOS"

// envKeys are registered with viper so that AutomaticEnv can resolve them
// during Unmarshal even when no config file mentions them.
var envKeys = []string{
	"server.host", "server.port", "server.mode", "server.read_timeout",
	"server.write_timeout", "server.max_body_size", "server.shutdown_timeout",

	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time",
	"database.statement_timeout", "database.lock_timeout", "database.auto_migrate",

	"redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout", "redis.key_prefix",

	"minio.endpoint", "minio.access_key", "minio.secret_key",
	"minio.bucket", "minio.region", "minio.use_ssl",

	"upload.dir", "upload.hamming_threshold", "upload.trim_page_threshold",
	"upload.head_pages", "upload.tail_pages", "upload.tie_break_seed",

	"auth.cookie_name", "auth.session_ttl", "auth.secure_cookie",
	"auth.login_rate", "auth.login_burst",

	"metrics.path", "metrics.namespace",

	"log.level", "log.format",
}

// newViper builds a Viper instance reading YAML with LEGAJOS_ env overrides,
// where nested keys map "." to "_" (database.host → LEGAJOS_DATABASE_HOST).
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	// Booleans whose zero value is not the desired default.
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("minio.enabled", false)
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("upload.hamming_threshold", DefaultHammingThreshold)
	return v
}

// Load reads the YAML file at configPath, merges LEGAJOS_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from LEGAJOS_* environment variables and
// defaults alone. The user table cannot be expressed this way; deployments
// that need logins use a file.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch re-parses configPath on every write and hands the new Config to
// onChange. Invalid edits are reported to onError (when non-nil) and the
// callback is skipped, so a bad save never replaces a good configuration.
// Only the log level is applied live by the server; everything else needs a
// restart.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on error. For use in main only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
