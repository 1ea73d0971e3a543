package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, BackendRedis, cfg.CursorBackend)
	assert.Equal(t, 5, cfg.DefaultPageSize)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, []string{"leads", "consultations"}, cfg.IndexFallbackListings)
	assert.Equal(t, 768000, cfg.InlineImageLimit)
	assert.Equal(t, 30*time.Minute, cfg.Redis.CursorTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddr())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("CURSOR_BACKEND", "memory")
	t.Setenv("INDEX_FALLBACK_LISTINGS", "leads, inquiries,,")
	t.Setenv("DEFAULT_PAGE_SIZE", "10")
	t.Setenv("CURSOR_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"leads", "inquiries"}, cfg.IndexFallbackListings)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CursorTTL)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PortalConfig)
	}{
		{"unknown store", func(c *PortalConfig) { c.StoreBackend = "postgres" }},
		{"unknown cursor backend", func(c *PortalConfig) { c.CursorBackend = "disk" }},
		{"zero page size", func(c *PortalConfig) { c.DefaultPageSize = 0 }},
		{"max below default", func(c *PortalConfig) { c.MaxPageSize = 2 }},
		{"mongo without uri", func(c *PortalConfig) { c.StoreBackend = BackendMongo; c.Mongo.URI = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPortalConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	client := NewRedisClient(RedisConfig{Host: "cache", Port: "6380", Database: 3, EnableTLS: true})
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache", opts.TLSConfig.ServerName)
	assert.Equal(t, 30*time.Minute, opts.ConnMaxIdleTime)
	assert.Equal(t, time.Hour, opts.ConnMaxLifetime)
	assert.Equal(t, "consultancy-portal", opts.ClientName)

	custom := NewRedisClient(RedisConfig{Host: "cache", Port: "6380", ConnMaxLifetime: 10 * time.Minute})
	defer custom.Close()
	assert.Equal(t, 10*time.Minute, custom.Options().ConnMaxLifetime)
	assert.Nil(t, custom.Options().TLSConfig)
}
