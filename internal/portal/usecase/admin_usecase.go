package usecase

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/eventbus"
	"consultancy-portal/internal/shared/logger"
)

// AdminUsecaseInterface is the administrator write surface. Every write returns the
// Mutation it applied so cached pages can replay it with Page.Apply.
type AdminUsecaseInterface interface {
	Create(ctx context.Context, listing string, fields map[string]interface{}, files []FileUpload) (*model.Mutation, error)
	Update(ctx context.Context, listing, id string, fields map[string]interface{}, files []FileUpload) (*model.Mutation, error)
	Delete(ctx context.Context, listing, id string) (*model.Mutation, error)
	MarkRead(ctx context.Context, listing, id string) (*model.Mutation, error)
	UnreadCounts(ctx context.Context) (map[string]int64, error)
}

type AdminUsecase struct {
	store    repository.DocumentStore
	registry *model.Registry
	media    MediaUsecaseInterface
	bus      eventbus.EventBusInterface
	logger   logger.Logger
}

func NewAdminUsecase(store repository.DocumentStore, registry *model.Registry, media MediaUsecaseInterface, bus eventbus.EventBusInterface, log logger.Logger) *AdminUsecase {
	return &AdminUsecase{
		store:    store,
		registry: registry,
		media:    media,
		bus:      bus,
		logger:   log.WithComponent("admin"),
	}
}

// reserved fields are owned by the store or by dedicated operations.
var reservedFields = map[string]bool{
	model.FieldID:        true,
	"_id":                true,
	model.FieldCreatedAt: true,
	model.FieldUpdatedAt: true,
	model.FieldRead:      true,
}

func (uc *AdminUsecase) Create(ctx context.Context, listing string, fields map[string]interface{}, files []FileUpload) (*model.Mutation, error) {
	l, err := uc.editable(listing)
	if err != nil {
		return nil, err
	}
	clean := withoutReserved(fields)
	if len(clean) == 0 && len(files) == 0 {
		return nil, errors.NewValidationError("no fields to save")
	}
	clean, err = uc.media.NormalizeImages(ctx, l, clean, files)
	if err != nil {
		return nil, err
	}
	clean[model.FieldCreatedAt] = model.ServerTimestamp

	id, err := uc.store.Insert(ctx, l.Collection, clean)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("create %s failed: %v", l.Name, err)
		return nil, errors.WrapError(err, "failed to create "+l.Name)
	}
	rec, err := uc.store.Get(ctx, l.Collection, id)
	if err != nil {
		return nil, errors.WrapError(err, "failed to reload "+l.Name)
	}

	m := &model.Mutation{Kind: model.MutationCreated, Listing: l.Name, ID: id, Record: rec}
	uc.publish(ctx, eventbus.EventTypeRecordCreated, m)
	uc.logger.WithContext(ctx).Infof("created %s/%s", l.Name, id)
	return m, nil
}

func (uc *AdminUsecase) Update(ctx context.Context, listing, id string, fields map[string]interface{}, files []FileUpload) (*model.Mutation, error) {
	l, err := uc.editable(listing)
	if err != nil {
		return nil, err
	}
	if err := uc.exists(ctx, l, id); err != nil {
		return nil, err
	}
	clean := withoutReserved(fields)
	if len(clean) == 0 && len(files) == 0 {
		return nil, errors.NewValidationError("no fields to save")
	}
	clean, err = uc.media.NormalizeImages(ctx, l, clean, files)
	if err != nil {
		return nil, err
	}
	clean[model.FieldUpdatedAt] = model.ServerTimestamp

	if err := uc.store.Update(ctx, l.Collection, id, clean); err != nil {
		uc.logger.WithContext(ctx).Errorf("update %s/%s failed: %v", l.Name, id, err)
		return nil, uc.notFoundOr(err, l, id, "failed to update "+l.Name)
	}
	rec, err := uc.store.Get(ctx, l.Collection, id)
	if err != nil {
		return nil, uc.notFoundOr(err, l, id, "failed to reload "+l.Name)
	}

	applied := make(map[string]interface{}, len(clean))
	for k := range clean {
		applied[k] = rec.Fields[k]
	}
	m := &model.Mutation{Kind: model.MutationUpdated, Listing: l.Name, ID: id, Fields: applied}
	uc.publish(ctx, eventbus.EventTypeRecordUpdated, m)
	return m, nil
}

func (uc *AdminUsecase) Delete(ctx context.Context, listing, id string) (*model.Mutation, error) {
	l, err := lookupListing(uc.registry, listing)
	if err != nil {
		return nil, err
	}
	if !l.AdminEditable && !l.HasReadFlag {
		return nil, errors.NewValidationError(l.Name + " records cannot be deleted")
	}
	if id == "" {
		return nil, errors.NewValidationError("id is required")
	}
	if err := uc.store.Delete(ctx, l.Collection, id); err != nil {
		uc.logger.WithContext(ctx).Errorf("delete %s/%s failed: %v", l.Name, id, err)
		return nil, uc.notFoundOr(err, l, id, "failed to delete "+l.Name)
	}

	m := &model.Mutation{Kind: model.MutationDeleted, Listing: l.Name, ID: id}
	uc.publish(ctx, eventbus.EventTypeRecordDeleted, m)
	uc.logger.WithContext(ctx).Infof("deleted %s/%s", l.Name, id)
	return m, nil
}

// MarkRead flips only the read flag of a lead, consultation or inquiry.
func (uc *AdminUsecase) MarkRead(ctx context.Context, listing, id string) (*model.Mutation, error) {
	l, err := lookupListing(uc.registry, listing)
	if err != nil {
		return nil, err
	}
	if !l.HasReadFlag {
		return nil, errors.NewValidationError(l.Name + " records have no read flag")
	}
	if id == "" {
		return nil, errors.NewValidationError("id is required")
	}
	fields := map[string]interface{}{model.FieldRead: true}
	if err := uc.store.Update(ctx, l.Collection, id, fields); err != nil {
		return nil, uc.notFoundOr(err, l, id, "failed to mark "+l.Name+" read")
	}

	m := &model.Mutation{Kind: model.MutationUpdated, Listing: l.Name, ID: id, Fields: fields}
	uc.publish(ctx, eventbus.EventTypeRecordUpdated, m)
	return m, nil
}

// UnreadCounts counts unread records per inbox listing for the dashboard badges.
func (uc *AdminUsecase) UnreadCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, l := range uc.registry.Inboxes() {
		n, err := uc.store.Count(ctx, l.Collection, []model.Filter{model.Where(model.FieldRead, false)})
		if err != nil {
			uc.logger.WithContext(ctx).Errorf("unread count %s failed: %v", l.Name, err)
			return nil, errors.WrapError(err, "failed to count unread "+l.Name)
		}
		counts[l.Name] = n
	}
	return counts, nil
}

func (uc *AdminUsecase) editable(listing string) (model.Listing, error) {
	l, err := lookupListing(uc.registry, listing)
	if err != nil {
		return l, err
	}
	if !l.AdminEditable {
		return l, errors.NewValidationError(l.Name + " is not an editable entity")
	}
	return l, nil
}

func (uc *AdminUsecase) exists(ctx context.Context, l model.Listing, id string) error {
	if id == "" {
		return errors.NewValidationError("id is required")
	}
	if _, err := uc.store.Get(ctx, l.Collection, id); err != nil {
		return uc.notFoundOr(err, l, id, "failed to load "+l.Name)
	}
	return nil
}

func (uc *AdminUsecase) notFoundOr(err error, l model.Listing, id, message string) error {
	if errors.IsNotFound(err) {
		return errors.NewNotFoundError(l.Name + "/" + id).WithCause(err)
	}
	return errors.WrapError(err, message)
}

func (uc *AdminUsecase) publish(ctx context.Context, eventType string, m *model.Mutation) {
	if uc.bus == nil {
		return
	}
	uc.bus.PublishAndForget(context.WithoutCancel(ctx), eventbus.NewEvent(eventType, *m, "admin"))
}

func withoutReserved(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if reservedFields[k] {
			continue
		}
		out[k] = v
	}
	return out
}
