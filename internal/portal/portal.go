package portal

import (
	"context"
	"fmt"

	"consultancy-portal/internal/access"
	authhttp "consultancy-portal/internal/auth/adapter/http"
	httpadapter "consultancy-portal/internal/portal/adapter/http"
	"consultancy-portal/internal/portal/adapter/notify"
	"consultancy-portal/internal/portal/adapter/persistence/memory"
	mongodbpersistence "consultancy-portal/internal/portal/adapter/persistence/mongodb"
	redispersistence "consultancy-portal/internal/portal/adapter/persistence/redis"
	"consultancy-portal/internal/portal/adapter/storage/gridfs"
	"consultancy-portal/internal/portal/config"
	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/portal/usecase"
	"consultancy-portal/internal/shared/eventbus"
	"consultancy-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies are the shared connections the portal may use. Either may be
// nil when the matching backend is configured as memory.
type Dependencies struct {
	MongoDB     *mongo.Database
	RedisClient redis.UniversalClient
}

// PortalModule wires the portal stores, usecases and HTTP handler.
type PortalModule struct {
	Config   *config.PortalConfig
	Registry *model.Registry
	Logger   logger.Logger
	EventBus *eventbus.EventBus
	Policy   *access.Policy

	DocumentStore repository.DocumentStore
	ObjectStore   repository.ObjectStore
	CursorStore   repository.CursorStore

	BrowseUsecase   usecase.BrowseUsecaseInterface
	AdminUsecase    usecase.AdminUsecaseInterface
	FormsUsecase    usecase.FormsUsecaseInterface
	LeadRecorder    usecase.LeadRecorderInterface
	ProfileUsecase  usecase.ProfileUsecaseInterface
	SettingsUsecase usecase.SettingsUsecaseInterface
	MediaUsecase    usecase.MediaUsecaseInterface

	Handler *httpadapter.HTTPHandler
}

// NewPortalModule builds the module from cfg. A nil cfg uses the in-memory defaults.
func NewPortalModule(ctx context.Context, cfg *config.PortalConfig, deps Dependencies, log logger.Logger) (*PortalModule, error) {
	log.Info("Initializing portal module...")
	if cfg == nil {
		cfg = config.DefaultPortalConfig()
		log.Info("No portal configuration provided, using in-memory defaults.")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := model.NewRegistry(cfg.IndexFallbackListings)
	bus := eventbus.NewEventBus(log)

	policy, err := access.LoadPolicy(cfg.AccessRulesFile, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load access rules: %w", err)
	}

	documents, objects, err := newStores(ctx, cfg, registry, deps.MongoDB, log)
	if err != nil {
		return nil, err
	}
	cursors, err := newCursorStore(cfg, deps.RedisClient, log)
	if err != nil {
		return nil, err
	}

	paginator := usecase.NewPaginator(documents, registry, usecase.PageSizeConfig{
		Default: cfg.DefaultPageSize,
		Max:     cfg.MaxPageSize,
	}, log)
	media := usecase.NewMediaUsecase(objects, usecase.MediaConfig{
		InlineImageLimit: cfg.InlineImageLimit,
		MaxUploadBytes:   cfg.MaxUploadBytes,
	}, log)
	settings := usecase.NewSettingsUsecase(documents, bus, log)

	m := &PortalModule{
		Config:          cfg,
		Registry:        registry,
		Logger:          log,
		EventBus:        bus,
		Policy:          policy,
		DocumentStore:   documents,
		ObjectStore:     objects,
		CursorStore:     cursors,
		BrowseUsecase:   usecase.NewBrowseUsecase(paginator, cursors, documents, registry, log),
		AdminUsecase:    usecase.NewAdminUsecase(documents, registry, media, bus, log),
		FormsUsecase:    usecase.NewFormsUsecase(documents, settings, notify.NewSMTPNotifier(log), bus, log),
		LeadRecorder:    usecase.NewLeadRecorder(documents, bus, log),
		ProfileUsecase:  usecase.NewProfileUsecase(documents, bus, log),
		SettingsUsecase: settings,
		MediaUsecase:    media,
	}
	m.Handler = httpadapter.NewPortalHTTPHandler(httpadapter.Usecases{
		Browse:   m.BrowseUsecase,
		Admin:    m.AdminUsecase,
		Forms:    m.FormsUsecase,
		Leads:    m.LeadRecorder,
		Profile:  m.ProfileUsecase,
		Settings: m.SettingsUsecase,
		Media:    m.MediaUsecase,
	}, httpadapter.WebSocketConfig{
		Path:       cfg.WebSocketPath,
		SendBuffer: cfg.ClientSendChannelBuffer,
	}, log)

	log.Infof("Portal module ready (store=%s, cursors=%s, listings=%d, rules=%d resources)",
		cfg.StoreBackend, cfg.CursorBackend, len(registry.Names()), len(policy.Resources()))
	return m, nil
}

func newStores(ctx context.Context, cfg *config.PortalConfig, registry *model.Registry, db *mongo.Database, log logger.Logger) (repository.DocumentStore, repository.ObjectStore, error) {
	if cfg.StoreBackend == config.BackendMemory {
		return memory.NewDocumentStore(), memory.NewObjectStore(cfg.FilesBaseURL), nil
	}
	if db == nil {
		return nil, nil, fmt.Errorf("store backend %q requires a MongoDB database", cfg.StoreBackend)
	}

	adapter := mongodbpersistence.NewMongoDatabaseAdapter(db)
	if cfg.Mongo.EnsureIndexes {
		if err := mongodbpersistence.NewIndexOperations(adapter, log).EnsureIndexes(ctx, mongodbpersistence.PlanIndexes(registry)); err != nil {
			return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
	}
	return mongodbpersistence.NewDocumentStore(adapter, log),
		gridfs.NewObjectStore(db, cfg.Mongo.UploadBucket, cfg.FilesBaseURL, log),
		nil
}

func newCursorStore(cfg *config.PortalConfig, client redis.UniversalClient, log logger.Logger) (repository.CursorStore, error) {
	if cfg.CursorBackend == config.BackendMemory {
		return memory.NewCursorStore(), nil
	}
	if client == nil {
		return nil, fmt.Errorf("cursor backend %q requires a Redis client", cfg.CursorBackend)
	}
	return redispersistence.NewCursorStore(client, cfg.Redis.CursorTTL, log), nil
}

// RegisterRoutes mounts the portal API behind the auth middleware.
func (m *PortalModule) RegisterRoutes(router fiber.Router, auth *authhttp.AuthMiddleware) {
	m.Handler.RegisterRoutes(router, auth, m.Policy)
}
