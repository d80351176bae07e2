package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:5000", cfg.Registry.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, 1000, cfg.LostID.RenewalFee)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("REGISTRY_BASE_URL", "http://registry.local:5000/")
	v.Set("REGISTRY_TIMEOUT", "not-a-duration")
	v.Set("LOSTID_RENEWAL_FEE", 0)
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, "http://registry.local:5000", cfg.Registry.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, 1000, cfg.LostID.RenewalFee)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
