package usecase

import (
	"context"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/eventbus"
	"consultancy-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsUsecaseInterface reads and merge-writes the site settings singleton.
type SettingsUsecaseInterface interface {
	Get(ctx context.Context) (*model.SiteSettings, error)
	Save(ctx context.Context, settings model.SiteSettings) (*model.SiteSettings, error)
}

type SettingsUsecase struct {
	store  repository.DocumentStore
	bus    eventbus.EventBusInterface
	logger logger.Logger
}

func NewSettingsUsecase(store repository.DocumentStore, bus eventbus.EventBusInterface, log logger.Logger) *SettingsUsecase {
	return &SettingsUsecase{store: store, bus: bus, logger: log.WithComponent("settings")}
}

// Get returns the stored settings, or empty settings when none were saved yet.
func (uc *SettingsUsecase) Get(ctx context.Context) (*model.SiteSettings, error) {
	rec, err := uc.store.Get(ctx, model.CollectionSettings, model.SettingsDocumentID)
	if err != nil {
		if errors.IsNotFound(err) {
			return &model.SiteSettings{Sections: map[string]bool{}}, nil
		}
		uc.logger.WithContext(ctx).Errorf("load settings failed: %v", err)
		return nil, errors.WrapError(err, "failed to load settings")
	}
	settings, err := settingsFromFields(rec.Fields)
	if err != nil {
		return nil, errors.NewInternalError("stored settings are malformed").WithCause(err)
	}
	return settings, nil
}

// Save merge-writes the whole settings document. An empty SMTP password keeps the stored one.
func (uc *SettingsUsecase) Save(ctx context.Context, settings model.SiteSettings) (*model.SiteSettings, error) {
	if err := validateStruct(settings); err != nil {
		return nil, err
	}
	fields, err := settingsToFields(settings)
	if err != nil {
		return nil, errors.NewValidationError("settings could not be encoded").WithCause(err)
	}
	if settings.Email.Password == "" {
		if email, ok := fields["email"].(map[string]interface{}); ok {
			delete(email, "password")
		}
	}
	fields[model.FieldUpdatedAt] = model.ServerTimestamp

	if err := uc.store.Set(ctx, model.CollectionSettings, model.SettingsDocumentID, fields, true); err != nil {
		uc.logger.WithContext(ctx).Errorf("save settings failed: %v", err)
		return nil, errors.WrapError(err, "failed to save settings")
	}
	saved, err := uc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if uc.bus != nil {
		uc.bus.PublishAndForget(context.WithoutCancel(ctx),
			eventbus.NewEvent(eventbus.EventTypeSettingsSaved, saved.Public(), "settings"))
	}
	uc.logger.WithContext(ctx).Info("site settings saved")
	return saved, nil
}

func settingsToFields(s model.SiteSettings) (map[string]interface{}, error) {
	s.UpdatedAt = time.Time{}
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return plain(doc).(map[string]interface{}), nil
}

func settingsFromFields(fields map[string]interface{}) (*model.SiteSettings, error) {
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var s model.SiteSettings
	if err := bson.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.Sections == nil {
		s.Sections = map[string]bool{}
	}
	return &s, nil
}

// plain converts decoded BSON into maps, slices and time values.
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case bson.D:
		out := make(map[string]interface{}, len(x))
		for _, e := range x {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = plain(val)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = plain(val)
		}
		return out
	case primitive.DateTime:
		return x.Time().UTC()
	}
	return v
}
