package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"

	"github.com/google/uuid"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-process DocumentStore for development and tests.
// It enforces no uniqueness constraints.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	clock       func() time.Time
	newID       func() string
	// missingIndex lists collections whose ordered queries fail with ErrMissingIndex.
	missingIndex map[string]bool
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithClock replaces the server clock.
func WithClock(clock func() time.Time) Option {
	return func(s *DocumentStore) { s.clock = clock }
}

// WithIDGenerator replaces the ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *DocumentStore) { s.newID = gen }
}

// WithMissingIndex makes ordered queries on the given collections report a missing index.
func WithMissingIndex(collections ...string) Option {
	return func(s *DocumentStore) {
		for _, c := range collections {
			s.missingIndex[c] = true
		}
	}
}

// NewDocumentStore creates an empty store.
func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{
		collections:  make(map[string]map[string]map[string]interface{}),
		clock:        func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		missingIndex: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, errors.ErrNotFound)
	}
	rec := model.NewRecord(id, fields)
	return &rec, nil
}

func (s *DocumentStore) Query(ctx context.Context, q model.Query) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.IsOrdered() && s.missingIndex[q.Collection] {
		return nil, fmt.Errorf("query %s: %w", q.Collection, errors.ErrMissingIndex)
	}

	s.mu.RLock()
	var out []model.Record
	for id, fields := range s.collections[q.Collection] {
		rec := model.NewRecord(id, fields)
		if s.keep(rec, q) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	orders := q.Orders
	if len(orders) == 0 {
		orders = []model.Order{{Field: model.FieldID, Direction: model.Ascending}}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.CompareRecords(out[i], out[j], orders) < 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *DocumentStore) keep(rec model.Record, q model.Query) bool {
	for _, f := range q.Filters {
		if !matches(rec, f) {
			return false
		}
	}
	if q.StartAfter != nil {
		orders := q.Orders
		if len(orders) == 0 {
			orders = []model.Order{{Field: model.FieldID, Direction: model.Ascending}}
		}
		return afterCursor(rec, q.StartAfter, orders)
	}
	return true
}

func (s *DocumentStore) Count(ctx context.Context, collection string, filters []model.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	q := model.Query{Collection: collection, Filters: filters}
	for id, fields := range s.collections[collection] {
		if s.keep(model.Record{ID: id, Fields: fields}, q) {
			n++
		}
	}
	return n, nil
}

func (s *DocumentStore) Insert(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	resolved := model.ResolveServerTimestamps(fields, now)
	if _, ok := resolved[model.FieldCreatedAt]; !ok {
		resolved[model.FieldCreatedAt] = now
	}
	id := s.newID()
	s.bucket(collection)[id] = resolved
	return id, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return errors.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := model.ResolveServerTimestamps(fields, s.clock())
	bucket := s.bucket(collection)
	existing, ok := bucket[id]
	if !merge {
		bucket[id] = resolved
		return nil
	}
	if !ok {
		existing = map[string]interface{}{}
	}
	bucket[id] = mergeFields(existing, resolved)
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, errors.ErrNotFound)
	}
	s.collections[collection][id] = mergeFields(existing, model.ResolveServerTimestamps(fields, s.clock()))
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, errors.ErrNotFound)
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *DocumentStore) bucket(collection string) map[string]map[string]interface{} {
	b, ok := s.collections[collection]
	if !ok {
		b = make(map[string]map[string]interface{})
		s.collections[collection] = b
	}
	return b
}

// mergeFields overlays update onto a copy of base. Nested maps merge recursively
// and an empty nested map changes nothing.
func mergeFields(base, update map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(update))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range update {
		if nested, ok := v.(map[string]interface{}); ok {
			prev, isMap := out[k].(map[string]interface{})
			merged := mergeFields(prev, nested)
			if len(merged) > 0 || isMap {
				out[k] = merged
			}
			continue
		}
		out[k] = v
	}
	return out
}
