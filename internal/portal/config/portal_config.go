package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// MongoConfig points the document and object stores at a MongoDB database.
type MongoConfig struct {
	URI            string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"MONGODB_DATABASE" envDefault:"consultancy_portal"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	UploadBucket   string        `env:"MONGODB_UPLOAD_BUCKET" envDefault:"uploads"`
	EnsureIndexes  bool          `env:"MONGODB_ENSURE_INDEXES" envDefault:"true"`
}

// RedisConfig holds the cursor chain store connection.
type RedisConfig struct {
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	Database        int    `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool   `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`

	// CursorTTL bounds how long an idle session keeps its cursor chains.
	CursorTTL time.Duration `env:"CURSOR_TTL" envDefault:"30m"`
}

// GetAddr returns host:port.
func (r RedisConfig) GetAddr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// PortalConfig holds everything the portal module needs besides auth.
type PortalConfig struct {
	Mongo MongoConfig
	Redis RedisConfig

	StoreBackend  string `env:"STORE_BACKEND" envDefault:"mongo"`
	CursorBackend string `env:"CURSOR_BACKEND" envDefault:"redis"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"5"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"50"`

	// IndexFallbackListings lists the listings allowed to serve unordered results
	// when their sort index is missing.
	IndexFallbackListings []string `env:"INDEX_FALLBACK_LISTINGS" envSeparator:"," envDefault:"leads,consultations"`

	InlineImageLimit int    `env:"INLINE_IMAGE_LIMIT_BYTES" envDefault:"768000"`
	MaxUploadBytes   int    `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	FilesBaseURL     string `env:"FILES_BASE_URL" envDefault:"http://localhost:3000/v1/files"`

	AccessRulesFile string `env:"ACCESS_RULES_FILE"`

	WebSocketPath           string `env:"PROFILE_WEBSOCKET_PATH" envDefault:"/ws/student/profile"`
	ClientSendChannelBuffer int    `env:"CLIENT_SEND_CHANNEL_BUFFER" envDefault:"10"`
}

// LoadConfig reads the portal configuration from the environment.
func LoadConfig() (*PortalConfig, error) {
	cfg := &PortalConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load portal configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPortalConfig returns an in-memory configuration for development and tests.
func DefaultPortalConfig() *PortalConfig {
	return &PortalConfig{
		Mongo:                   MongoConfig{URI: "mongodb://localhost:27017", Database: "consultancy_portal", ConnectTimeout: 10 * time.Second, UploadBucket: "uploads"},
		Redis:                   RedisConfig{Host: "localhost", Port: "6379", CursorTTL: 30 * time.Minute},
		StoreBackend:            BackendMemory,
		CursorBackend:           BackendMemory,
		DefaultPageSize:         5,
		MaxPageSize:             50,
		IndexFallbackListings:   []string{"leads", "consultations"},
		InlineImageLimit:        750 * 1024,
		MaxUploadBytes:          5 * 1024 * 1024,
		FilesBaseURL:            "http://localhost:3000/v1/files",
		WebSocketPath:           "/ws/student/profile",
		ClientSendChannelBuffer: 10,
	}
}

// Validate normalizes backends and rejects inconsistent sizes.
func (c *PortalConfig) Validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.CursorBackend = strings.ToLower(strings.TrimSpace(c.CursorBackend))

	if c.StoreBackend != BackendMemory && c.StoreBackend != BackendMongo {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendMongo, c.StoreBackend)
	}
	if c.CursorBackend != BackendMemory && c.CursorBackend != BackendRedis {
		return fmt.Errorf("CURSOR_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.CursorBackend)
	}
	if c.DefaultPageSize <= 0 {
		return errors.New("DEFAULT_PAGE_SIZE must be positive")
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) must not be below DEFAULT_PAGE_SIZE (%d)", c.MaxPageSize, c.DefaultPageSize)
	}
	if c.StoreBackend == BackendMongo && c.Mongo.URI == "" {
		return errors.New("MONGODB_URI is required for the mongo store backend")
	}

	listings := c.IndexFallbackListings[:0]
	for _, l := range c.IndexFallbackListings {
		if l = strings.TrimSpace(l); l != "" {
			listings = append(listings, l)
		}
	}
	c.IndexFallbackListings = listings

	if c.ClientSendChannelBuffer <= 0 {
		c.ClientSendChannelBuffer = 10
	}
	if c.WebSocketPath == "" {
		c.WebSocketPath = "/ws/student/profile"
	}
	return nil
}
