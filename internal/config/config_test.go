package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "promote.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "plan.yaml", cfg.Promote.PlanPath)
	assert.Equal(t, 10, cfg.Promote.SettleDelaySecs)
	assert.Equal(t, 5.0, cfg.Source.RateLimit)
	assert.Equal(t, 60, cfg.Source.TimeoutSecs)
	assert.Equal(t, 60*time.Second, cfg.Target.Timeout())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROMOTE_STORE_DRIVER", "postgres")
	t.Setenv("PROMOTE_PROMOTE_SETTLE_DELAY_SECS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Promote.SettleDelaySecs)
}

func TestSettleDelay(t *testing.T) {
	p := PromoteConfig{SettleDelaySecs: 10}
	assert.Equal(t, 10*time.Second, p.SettleDelay())
}
