package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MAIL_SEND_ENABLED", "true")
	t.Setenv("RENDER_MAX_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.True(t, cfg.MailSendEnabled)
	assert.Equal(t, 64*1024, cfg.RenderMaxSize)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:     "k",
			JWTTTL:        time.Hour,
			BcryptCost:    10,
			RenderMaxSize: 1024,
			StoreDriver:   StoreDriverPostgres,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		key    string
	}{
		{"empty secret", func(c *Config) { c.JWTSecret = "  " }, "JWT_SECRET"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL"},
		{"cost too low", func(c *Config) { c.BcryptCost = 2 }, "BCRYPT_COST"},
		{"cost too high", func(c *Config) { c.BcryptCost = 40 }, "BCRYPT_COST"},
		{"render size", func(c *Config) { c.RenderMaxSize = 0 }, "RENDER_MAX_SIZE"},
		{"driver", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			var ce *errs.ConfigurationError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.key, ce.Key)
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.PostgresDSN())
}
