package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Tally", cfg.App.Name)
	assert.Equal(t, 5, cfg.Dialog.PageSize)
	assert.Equal(t, "₹", cfg.Dialog.Currency)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 20*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "postgres://postgres:@db.internal:5432/tally?sslmode=disable", cfg.ConnectionString())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{
			name:    "Valid",
			mutate:  func(c *config.Config) {},
			wantErr: false,
		},
		{
			name:    "MissingToken",
			mutate:  func(c *config.Config) { c.Telegram.Token = "" },
			wantErr: true,
		},
		{
			name:    "MissingGeminiKey",
			mutate:  func(c *config.Config) { c.Gemini.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "ZeroPageSize",
			mutate:  func(c *config.Config) { c.Dialog.PageSize = 0 },
			wantErr: true,
		},
		{
			name:    "MissingJWTSecret",
			mutate:  func(c *config.Config) { c.Auth.JWTSecret = "" },
			wantErr: true,
		},
		{
			name:    "ShortJWTSecret",
			mutate:  func(c *config.Config) { c.Auth.JWTSecret = "secret" },
			wantErr: true,
		},
		{
			name:    "ZeroTokenTTL",
			mutate:  func(c *config.Config) { c.Auth.TokenTTL = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			cfg.Telegram.Token = "token"
			cfg.Gemini.APIKey = "key"
			cfg.Dialog.PageSize = 5
			cfg.Auth.JWTSecret = strings.Repeat("k", config.MinJWTSecretLength)
			cfg.Auth.TokenTTL = 15 * time.Minute

			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
