package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"DB_PASSWORD": "secret",
		"JWT_SECRET":  "signing-key",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "prizewheel", cfg.Database.Name)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "UTC", cfg.Play.Timezone)
	assert.Equal(t, 30, cfg.Play.DefaultRedemptionDays)
	assert.Equal(t, 30, cfg.Play.RequestsPerMinute)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.GetServerAddr())
}

func TestLoadOverrides(t *testing.T) {
	env := requiredEnv()
	env["SERVER_CORS_ORIGINS"] = "https://a.example,https://b.example"
	env["PLAY_TIMEZONE"] = "Europe/Berlin"
	env["PLAY_DEFAULT_REDEMPTION_DAYS"] = "7"
	env["REDIS_ENABLED"] = "true"

	cfg, err := Load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 7, cfg.Play.DefaultRedemptionDays)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "Europe/Berlin", cfg.Play.Location().String())
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing db password": {"JWT_SECRET": "k"},
		"missing jwt secret":  {"DB_PASSWORD": "p"},
		"bad timezone":        {"DB_PASSWORD": "p", "JWT_SECRET": "k", "PLAY_TIMEZONE": "Mars/Olympus"},
		"zero expiry":         {"DB_PASSWORD": "p", "JWT_SECRET": "k", "PLAY_DEFAULT_REDEMPTION_DAYS": "0"},
		"production no dsn":   {"DB_PASSWORD": "p", "JWT_SECRET": "k", "APP_ENVIRONMENT": "production"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "host=db password=***** dbname=x", maskPassword("host=db password=hunter2 dbname=x"))
	assert.Equal(t, "host=db password=*****", maskPassword("host=db password=hunter2"))
	assert.Equal(t, "host=db", maskPassword("host=db"))
}
