package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"consultancy-portal/internal/auth"
	authconfig "consultancy-portal/internal/auth/config"
	"consultancy-portal/internal/portal"
	portalconfig "consultancy-portal/internal/portal/config"
	"consultancy-portal/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container owns the shared connections and the module instances.
type Container struct {
	mu       sync.RWMutex
	services map[reflect.Type]interface{}

	// Module instances
	AuthModule   *auth.AuthModule
	PortalModule *portal.PortalModule

	// Connections, nil when the configured backends keep state in memory
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	// Configuration
	AuthConfig   *authconfig.Config
	PortalConfig *portalconfig.PortalConfig

	Logger logger.Logger
}

func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{
		services: make(map[reflect.Type]interface{}),
		Logger:   log,
	}
}

// InitializeConnections opens the MongoDB and Redis connections the portal
// configuration asks for and verifies them with a ping.
func (c *Container) InitializeConnections(ctx context.Context, cfg *portalconfig.PortalConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PortalConfig = cfg

	if cfg.StoreBackend == portalconfig.BackendMongo {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		c.MongoClient = client
		c.MongoDB = client.Database(cfg.Mongo.Database)
		c.Logger.Infof("MongoDB connection established (database %s)", cfg.Mongo.Database)
	}

	if cfg.CursorBackend == portalconfig.BackendRedis {
		client := portalconfig.NewRedisClient(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to ping Redis at %s: %w", cfg.Redis.GetAddr(), err)
		}
		c.RedisClient = client
		c.Logger.Infof("Redis connection established (%s)", cfg.Redis.GetAddr())
	}
	return nil
}

// InitializeAuth creates the auth module. Admins live in MongoDB when it is connected.
func (c *Container) InitializeAuth(ctx context.Context, cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.AuthConfig = cfg
	authModule, err := auth.NewAuthModule(ctx, c.MongoDB, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule
	c.register(authModule)
	return nil
}

// InitializePortal creates the portal module on the connections opened earlier.
func (c *Container) InitializePortal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before the portal module")
	}

	deps := portal.Dependencies{MongoDB: c.MongoDB}
	if c.RedisClient != nil {
		deps.RedisClient = c.RedisClient
	}
	portalModule, err := portal.NewPortalModule(ctx, c.PortalConfig, deps, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create portal module: %w", err)
	}
	c.PortalModule = portalModule
	c.register(portalModule)
	c.register(portalModule.EventBus)
	return nil
}

// Register registers a service instance under its type.
func (c *Container) Register(service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(service)
}

func (c *Container) register(service interface{}) {
	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	c.services[serviceType] = service
}

// Resolve resolves a service by type.
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if serviceType != nil && serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	if service, exists := c.services[serviceType]; exists {
		return service, nil
	}
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	service, err := c.Resolve(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	if typedService, ok := service.(T); ok {
		return typedService, nil
	}
	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

func (c *Container) GetPortalModule() *portal.PortalModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PortalModule
}

// HealthCheck pings every open connection.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	if c.AuthModule == nil || c.PortalModule == nil {
		return fmt.Errorf("modules not initialized")
	}
	return nil
}

// Cleanup closes connections in reverse order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	c.PortalModule = nil
	c.AuthModule = nil

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close Redis: %w", err))
		}
		c.RedisClient = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect MongoDB: %w", err))
		}
		c.MongoClient = nil
		c.MongoDB = nil
	}

	c.services = make(map[reflect.Type]interface{})
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close releases all resources with a 30 second deadline.
func (c *Container) Close() error {
	c.Logger.Info("Closing DI container resources...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("DI container resources closed.")
	return nil
}
