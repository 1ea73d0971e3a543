package usecase

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"
)

// BrowseUsecaseInterface is the read side of the listings: pages kept per session, counts and single records.
type BrowseUsecaseInterface interface {
	Browse(ctx context.Context, sessionID string, req model.PageRequest) (*BrowseResult, error)
	Count(ctx context.Context, listing string) (int64, error)
	Get(ctx context.Context, listing, id string) (*model.Record, error)
	ResetCursors(ctx context.Context, sessionID, listing string) error
}

// BrowseUsecase loads a session's cursor chain, serves the page and saves the chain back.
type BrowseUsecase struct {
	paginator PaginatorInterface
	cursors   repository.CursorStore
	store     repository.DocumentStore
	registry  *model.Registry
	logger    logger.Logger
}

func NewBrowseUsecase(p PaginatorInterface, cursors repository.CursorStore, store repository.DocumentStore, registry *model.Registry, log logger.Logger) *BrowseUsecase {
	return &BrowseUsecase{
		paginator: p,
		cursors:   cursors,
		store:     store,
		registry:  registry,
		logger:    log.WithComponent("browse"),
	}
}

func (uc *BrowseUsecase) Browse(ctx context.Context, sessionID string, req model.PageRequest) (*BrowseResult, error) {
	if sessionID == "" {
		return nil, errors.NewValidationError("session id is required")
	}
	log := uc.logger.WithContext(ctx)

	chain, err := uc.cursors.Load(ctx, sessionID, req.Listing)
	if err != nil {
		// Without the chain only page 1 can be served; the paginator handles that.
		log.Warnf("load cursors for %s: %v", req.Listing, err)
		chain = model.NewCursorChain(sessionID, req.Listing)
	}

	page, err := uc.paginator.GetPage(ctx, chain, req)
	if err != nil {
		return nil, err
	}

	if err := uc.cursors.Save(ctx, chain); err != nil {
		log.Warnf("save cursors for %s: %v", req.Listing, err)
	}

	result := &BrowseResult{Page: page}
	if total, err := uc.paginator.TotalCount(ctx, req.Listing); err != nil {
		log.Warnf("count for %s unavailable: %v", req.Listing, err)
	} else {
		result.Total = &total
		result.PageCount = model.PageCount(total, page.PageSize)
	}
	return result, nil
}

func (uc *BrowseUsecase) Count(ctx context.Context, listing string) (int64, error) {
	return uc.paginator.TotalCount(ctx, listing)
}

func (uc *BrowseUsecase) Get(ctx context.Context, listing, id string) (*model.Record, error) {
	l, err := lookupListing(uc.registry, listing)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.NewValidationError("id is required")
	}
	rec, err := uc.store.Get(ctx, l.Collection, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError(l.Name + "/" + id).WithCause(err)
		}
		return nil, errors.WrapError(err, "failed to load "+l.Name)
	}
	return rec, nil
}

func (uc *BrowseUsecase) ResetCursors(ctx context.Context, sessionID, listing string) error {
	if _, err := lookupListing(uc.registry, listing); err != nil {
		return err
	}
	if err := uc.cursors.Clear(ctx, sessionID, listing); err != nil {
		return errors.WrapError(err, "failed to reset cursors")
	}
	return nil
}
