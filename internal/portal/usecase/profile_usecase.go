package usecase

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/eventbus"
	"consultancy-portal/internal/shared/logger"
)

// ProfileUsecaseInterface manages students/{uid} and streams its changes.
type ProfileUsecaseInterface interface {
	Get(ctx context.Context, uid string) (*model.Student, error)
	Resolve(ctx context.Context, identity model.Student) (*model.Student, error)
	Update(ctx context.Context, uid string, update model.ProfileUpdate) (*model.Student, error)
	Subscribe(uid string, fn func(model.Student)) (cancel func())
}

type ProfileUsecase struct {
	store  repository.DocumentStore
	bus    eventbus.EventBusInterface
	logger logger.Logger
}

func NewProfileUsecase(store repository.DocumentStore, bus eventbus.EventBusInterface, log logger.Logger) *ProfileUsecase {
	return &ProfileUsecase{store: store, bus: bus, logger: log.WithComponent("profile")}
}

func (uc *ProfileUsecase) Get(ctx context.Context, uid string) (*model.Student, error) {
	if uid == "" {
		return nil, errors.NewAuthenticationError("student identity is required")
	}
	rec, err := uc.store.Get(ctx, model.ListingStudents, uid)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("student profile").WithCause(err)
		}
		return nil, errors.WrapError(err, "failed to load profile")
	}
	s := model.StudentFromRecord(*rec)
	return &s, nil
}

// Resolve returns the stored profile, creating it from the token identity on first use.
func (uc *ProfileUsecase) Resolve(ctx context.Context, identity model.Student) (*model.Student, error) {
	s, err := uc.Get(ctx, identity.ID)
	if err == nil {
		return s, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	fields := map[string]interface{}{
		model.StudentName:    identity.Name,
		model.StudentEmail:   identity.Email,
		model.StudentPicture: identity.Picture,
		model.FieldCreatedAt: model.ServerTimestamp,
	}
	if err := uc.store.Set(ctx, model.ListingStudents, identity.ID, fields, true); err != nil {
		uc.logger.WithContext(ctx).Errorf("create profile %s failed: %v", identity.ID, err)
		return nil, errors.WrapError(err, "failed to create profile")
	}
	uc.logger.WithContext(ctx).Infof("created profile for %s", identity.ID)
	return uc.Get(ctx, identity.ID)
}

func (uc *ProfileUsecase) Update(ctx context.Context, uid string, update model.ProfileUpdate) (*model.Student, error) {
	if uid == "" {
		return nil, errors.NewAuthenticationError("student identity is required")
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, errors.NewValidationError("no profile fields to update")
	}
	fields[model.FieldUpdatedAt] = model.ServerTimestamp

	if err := uc.store.Set(ctx, model.ListingStudents, uid, fields, true); err != nil {
		uc.logger.WithContext(ctx).Errorf("update profile %s failed: %v", uid, err)
		return nil, errors.WrapError(err, "failed to update profile")
	}
	s, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if uc.bus != nil {
		if err := uc.bus.Publish(ctx, eventbus.NewEvent(eventbus.EventTypeProfileUpdated, *s, "profile")); err != nil {
			uc.logger.WithContext(ctx).Warnf("profile event for %s not delivered: %v", uid, err)
		}
	}
	return s, nil
}

// Subscribe calls fn with the new profile every time uid's profile is updated.
func (uc *ProfileUsecase) Subscribe(uid string, fn func(model.Student)) func() {
	if uc.bus == nil {
		return func() {}
	}
	return uc.bus.SubscribeCancelable(eventbus.EventTypeProfileUpdated, func(ctx context.Context, event eventbus.Event) error {
		s, ok := event.Data().(model.Student)
		if !ok || s.ID != uid {
			return nil
		}
		fn(s)
		return nil
	})
}
