package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/legajos-penal/internal/config"
)

func validConfig() *config.Config {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Users: []config.UserConfig{
				{Username: "Manuel", PasswordHash: "$2a$10$7EqJtq98hPqEX7fNZaFWoO", Role: "admin", Attorney: "MANUEL"},
				{Username: "practicante", PasswordHash: "$2a$10$7EqJtq98hPqEX7fNZaFWoO", Role: "user"},
			},
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestValidate_DefaultedConfigIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"port", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"db host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"db conns", func(c *config.Config) { c.Database.MinConns = 50 }, "min_conns"},
		{"redis", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"minio endpoint", func(c *config.Config) { c.MinIO.Enabled = true }, "minio.endpoint"},
		{"upload dir", func(c *config.Config) { c.Upload.Dir = "  " }, "upload.dir"},
		{"hamming", func(c *config.Config) { c.Upload.HammingThreshold = 65 }, "hamming_threshold"},
		{"head pages", func(c *config.Config) { c.Upload.HeadPages = -1 }, "head_pages"},
		{"duplicate user", func(c *config.Config) {
			c.Auth.Users = append(c.Auth.Users, c.Auth.Users[0])
		}, "duplicated"},
		{"role", func(c *config.Config) { c.Auth.Users[1].Role = "root" }, "role"},
		{"plaintext password", func(c *config.Config) { c.Auth.Users[0].PasswordHash = "Manuel22" }, "bcrypt"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.Host = "0.0.0.0"
	assert.Equal(t, "0.0.0.0:5001", cfg.Server.Addr())
}
