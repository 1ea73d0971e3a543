package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionInterface is the slice of *mongo.Collection the document store uses.
type CollectionInterface interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc interface{}) (interface{}, error)
	FindOne(ctx context.Context, filter interface{}) SingleResultInterface
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultInterface, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (UpdateResultInterface, error)
	DeleteOne(ctx context.Context, filter interface{}) (DeleteResultInterface, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error)
	Indexes() IndexManager
}

// DatabaseInterface hands out collections by name.
type DatabaseInterface interface {
	Collection(name string) CollectionInterface
}

type SingleResultInterface interface {
	Decode(v interface{}) error
}

type UpdateResultInterface interface {
	Matched() int64
	Upserted() bool
}

type DeleteResultInterface interface{ Deleted() int64 }

type CursorInterface interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Close(ctx context.Context) error
	Err() error
}

// IndexManager creates indexes on a collection.
type IndexManager interface {
	CreateMany(ctx context.Context, models []mongo.IndexModel) ([]string, error)
}

// MongoDatabaseAdapter makes *mongo.Database satisfy DatabaseInterface.
type MongoDatabaseAdapter struct {
	db *mongo.Database
}

func NewMongoDatabaseAdapter(db *mongo.Database) *MongoDatabaseAdapter {
	return &MongoDatabaseAdapter{db: db}
}

func (m *MongoDatabaseAdapter) Collection(name string) CollectionInterface {
	return NewMongoCollectionAdapter(m.db.Collection(name))
}

// MongoCollectionAdapter makes *mongo.Collection satisfy CollectionInterface.
type MongoCollectionAdapter struct {
	col *mongo.Collection
}

func NewMongoCollectionAdapter(col *mongo.Collection) *MongoCollectionAdapter {
	return &MongoCollectionAdapter{col: col}
}

func (m *MongoCollectionAdapter) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return m.col.CountDocuments(ctx, filter, opts...)
}

func (m *MongoCollectionAdapter) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (m *MongoCollectionAdapter) FindOne(ctx context.Context, filter interface{}) SingleResultInterface {
	return m.col.FindOne(ctx, filter)
}

func (m *MongoCollectionAdapter) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultInterface, error) {
	res, err := m.col.UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoUpdateResult{res: res}, nil
}

func (m *MongoCollectionAdapter) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (UpdateResultInterface, error) {
	res, err := m.col.ReplaceOne(ctx, filter, replacement, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoUpdateResult{res: res}, nil
}

func (m *MongoCollectionAdapter) DeleteOne(ctx context.Context, filter interface{}) (DeleteResultInterface, error) {
	res, err := m.col.DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return deleteCount(res.DeletedCount), nil
}

func (m *MongoCollectionAdapter) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	cur, err := m.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (m *MongoCollectionAdapter) Indexes() IndexManager {
	return indexView{view: m.col.Indexes()}
}

type mongoUpdateResult struct {
	res *mongo.UpdateResult
}

func (r *mongoUpdateResult) Matched() int64 { return r.res.MatchedCount }
func (r *mongoUpdateResult) Upserted() bool { return r.res.UpsertedCount > 0 }

type deleteCount int64

func (d deleteCount) Deleted() int64 { return int64(d) }

type indexView struct {
	view mongo.IndexView
}

func (v indexView) CreateMany(ctx context.Context, models []mongo.IndexModel) ([]string, error) {
	return v.view.CreateMany(ctx, models)
}
