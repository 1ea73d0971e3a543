package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps each collection in a MongoDB collection of the same name.
// Record IDs are stored in _id as hex strings.
type DocumentStore struct {
	db     DatabaseInterface
	clock  func() time.Time
	hints  bool
	logger logger.Logger
}

// StoreOption configures a DocumentStore.
type StoreOption func(*DocumentStore)

// WithStoreClock overrides the clock used for server timestamps.
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *DocumentStore) { s.clock = clock }
}

// WithOrderHints makes ordered queries name their sort index, so a missing index
// surfaces as ErrMissingIndex instead of an in-memory sort.
func WithOrderHints(enabled bool) StoreOption {
	return func(s *DocumentStore) { s.hints = enabled }
}

func NewDocumentStore(db DatabaseInterface, log logger.Logger, opts ...StoreOption) *DocumentStore {
	s := &DocumentStore{
		db:     db,
		clock:  func() time.Time { return time.Now().UTC() },
		hints:  true,
		logger: log.WithComponent("mongo-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentStore) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*model.Record, error) {
	if id == "" {
		return nil, errors.ErrInvalidID
	}
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, mapError(err, collection, id)
	}
	rec := toRecord(doc)
	return &rec, nil
}

func (s *DocumentStore) Query(ctx context.Context, q model.Query) ([]model.Record, error) {
	filter, err := buildFilter(q.Filters)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, errors.ErrInvalidInput)
	}
	filter = mergeFiltersWithAnd(filter, buildCursorFilter(q))

	opts := options.Find()
	if len(q.Orders) > 0 {
		opts.SetSort(buildSort(q.Orders))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if s.hints && q.IsOrdered() && len(q.Filters) == 0 {
		opts.SetHint(buildSort(q.Orders))
	}

	cur, err := s.db.Collection(q.Collection).Find(ctx, filter, opts)
	if err != nil {
		mapped := mapError(err, q.Collection, "")
		if stderrors.Is(mapped, errors.ErrMissingIndex) {
			s.logger.WithContext(ctx).Warnf("no sort index on %s for %v", q.Collection, buildSort(q.Orders))
		}
		return nil, mapped
	}
	defer cur.Close(ctx)

	var out []model.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", q.Collection, err)
		}
		out = append(out, toRecord(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, mapError(err, q.Collection, "")
	}
	return out, nil
}

func (s *DocumentStore) Count(ctx context.Context, collection string, filters []model.Filter) (int64, error) {
	filter, err := buildFilter(filters)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, errors.ErrInvalidInput)
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapError(err, collection, "")
	}
	return n, nil
}

func (s *DocumentStore) Insert(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	now := s.now()
	resolved := model.ResolveServerTimestamps(fields, now)
	if _, ok := resolved[model.FieldCreatedAt]; !ok {
		resolved[model.FieldCreatedAt] = now
	}
	id := primitive.NewObjectID().Hex()
	if _, err := s.db.Collection(collection).InsertOne(ctx, toDocument(id, resolved)); err != nil {
		return "", mapError(err, collection, id)
	}
	return id, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	if id == "" {
		return errors.ErrInvalidID
	}
	resolved := model.ResolveServerTimestamps(fields, s.now())
	col := s.db.Collection(collection)
	var err error
	if merge {
		_, err = col.UpdateOne(ctx, bson.M{"_id": id}, setDocument(id, resolved), options.Update().SetUpsert(true))
	} else {
		_, err = col.ReplaceOne(ctx, bson.M{"_id": id}, toDocument(id, resolved), options.Replace().SetUpsert(true))
	}
	if err != nil {
		return mapError(err, collection, id)
	}
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if id == "" {
		return errors.ErrInvalidID
	}
	resolved := model.ResolveServerTimestamps(fields, s.now())
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, setDocument(id, resolved))
	if err != nil {
		return mapError(err, collection, id)
	}
	if res.Matched() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, errors.ErrNotFound)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return errors.ErrInvalidID
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err, collection, id)
	}
	if res.Deleted() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, errors.ErrNotFound)
	}
	return nil
}

func withoutID(fields map[string]interface{}) map[string]interface{} {
	if _, ok := fields[model.FieldID]; !ok {
		if _, ok := fields["_id"]; !ok {
			return fields
		}
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k == model.FieldID || k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

// Server error codes the store translates.
const (
	codeBadValue      = 2
	codeIndexNotFound = 27
	codeBadHint       = 291
)

// mapError translates driver errors into the store's sentinels.
func mapError(err error, collection, id string) error {
	where := collection
	if id != "" {
		where = collection + "/" + id
	}
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", where, errors.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", where, errors.ErrConflict)
	case isMissingIndex(err):
		return fmt.Errorf("%s: %w", where, errors.ErrMissingIndex)
	}
	return fmt.Errorf("%s: %w", where, err)
}

func isMissingIndex(err error) bool {
	var se mongo.ServerError
	if !stderrors.As(err, &se) {
		return false
	}
	if se.HasErrorCode(codeBadHint) || se.HasErrorCode(codeIndexNotFound) {
		return true
	}
	return se.HasErrorCode(codeBadValue) && strings.Contains(strings.ToLower(err.Error()), "hint")
}
