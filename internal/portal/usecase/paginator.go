package usecase

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"
)

// PaginatorInterface serves bounded pages of a listing using cursor chains.
type PaginatorInterface interface {
	TotalCount(ctx context.Context, listing string) (int64, error)
	GetPage(ctx context.Context, chain *model.CursorChain, req model.PageRequest) (*model.Page, error)
}

// PageSizeConfig bounds requested page sizes.
type PageSizeConfig struct {
	Default int
	Max     int
}

// Paginator implements PaginatorInterface over a DocumentStore.
type Paginator struct {
	store    repository.DocumentStore
	registry *model.Registry
	sizes    PageSizeConfig
	logger   logger.Logger
}

// NewPaginator creates a paginator.
func NewPaginator(store repository.DocumentStore, registry *model.Registry, sizes PageSizeConfig, log logger.Logger) *Paginator {
	if sizes.Default <= 0 {
		sizes.Default = 10
	}
	if sizes.Max < sizes.Default {
		sizes.Max = sizes.Default
	}
	return &Paginator{
		store:    store,
		registry: registry,
		sizes:    sizes,
		logger:   log.WithComponent("paginator"),
	}
}

// TotalCount returns the count aggregate for a listing. It is used for display only.
func (p *Paginator) TotalCount(ctx context.Context, listing string) (int64, error) {
	l, err := lookupListing(p.registry, listing)
	if err != nil {
		return 0, err
	}
	n, err := p.store.Count(ctx, l.Collection, nil)
	if err != nil {
		p.logger.WithContext(ctx).Errorf("count %s failed: %v", l.Name, err)
		return 0, errors.WrapError(err, "failed to count "+l.Name)
	}
	return n, nil
}

// GetPage returns page req.Page of the listing and records its last record in chain.
//
// Page 1 never needs a cursor and restarts the chain. Page N>1 starts after the
// cursor recorded for page N-1; when the chain has none, page 1 is served and the
// result is marked Restarted.
func (p *Paginator) GetPage(ctx context.Context, chain *model.CursorChain, req model.PageRequest) (*model.Page, error) {
	l, err := lookupListing(p.registry, req.Listing)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, errors.NewValidationError("cursor chain is required")
	}
	if chain.Listing != l.Name {
		return nil, errors.NewValidationError("cursor chain belongs to listing " + chain.Listing).
			WithDetail("listing", l.Name)
	}
	if req.Page < 1 {
		return nil, errors.NewValidationError("page must be at least 1")
	}
	size, err := p.pageSize(req.PageSize)
	if err != nil {
		return nil, err
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]interface{}{"listing": l.Name, "page": req.Page})

	number := req.Page
	q := model.Query{Collection: l.Collection, Orders: l.Orders(), Limit: size + 1}
	restarted := false
	if number > 1 {
		if cur := chain.After(number - 1); cur != nil {
			q.StartAfter = cur
		} else {
			log.Warnf("no cursor for page %d, serving page 1", number-1)
			number = 1
			restarted = true
		}
	}
	if number == 1 {
		chain.Restart()
	}

	records, ordered, err := p.fetch(ctx, l, q, log)
	if err != nil {
		return nil, err
	}

	page := &model.Page{
		Listing:     l.Name,
		Number:      number,
		PageSize:    size,
		HasNext:     len(records) > size,
		HasPrevious: number > 1,
		Ordered:     ordered,
		Restarted:   restarted,
	}
	if page.HasNext {
		records = records[:size]
	}
	page.Records = records

	if last, ok := page.Last(); ok {
		chain.Record(number, model.NewCursor(last, l.CursorFields()))
	}
	log.Debugf("served %d records", len(records))
	return page, nil
}

// fetch runs q, retrying once in store order when the listing allows the index fallback.
func (p *Paginator) fetch(ctx context.Context, l model.Listing, q model.Query, log logger.Logger) ([]model.Record, bool, error) {
	records, err := p.store.Query(ctx, q)
	if err == nil {
		return records, true, nil
	}
	if !errors.IsMissingIndex(err) {
		log.Errorf("query failed: %v", err)
		return nil, false, errors.WrapError(err, "failed to load "+l.Name)
	}
	if !l.IndexFallback || !q.IsOrdered() {
		log.Errorf("ordered query needs an index: %v", err)
		return nil, false, errors.NewInternalError(l.Name + " needs a composite index").
			WithCode("missing_index").WithCause(err)
	}

	log.Warn("missing index, retrying unordered")
	records, err = p.store.Query(ctx, q.Unordered())
	if err != nil {
		log.Errorf("unordered retry failed: %v", err)
		return nil, false, errors.WrapError(err, "failed to load "+l.Name)
	}
	return records, false, nil
}

func (p *Paginator) pageSize(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, errors.NewValidationError("pageSize must not be negative")
	case requested == 0:
		return p.sizes.Default, nil
	case requested > p.sizes.Max:
		return p.sizes.Max, nil
	}
	return requested, nil
}

func lookupListing(registry *model.Registry, name string) (model.Listing, error) {
	l, ok := registry.Lookup(name)
	if !ok {
		return model.Listing{}, errors.NewValidationError("unknown listing " + name).
			WithCode("unknown_listing").WithCause(errors.ErrUnknownListing)
	}
	return l, nil
}
