package repository

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
)

// DocumentStore defines the document database the portal runs on.
//
// Fields set to model.ServerTimestamp are replaced with the store's clock on write.
// Query returns errors.ErrMissingIndex when an ordered query needs an index the
// store does not have; Get, Update and Delete return errors.ErrNotFound for unknown
// IDs; Insert returns errors.ErrConflict when a uniqueness constraint rejects it.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*model.Record, error)
	Query(ctx context.Context, query model.Query) ([]model.Record, error)
	Count(ctx context.Context, collection string, filters []model.Filter) (int64, error)
	Insert(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	// Set writes the record with the given ID, creating it when absent. With merge
	// only the supplied fields change; without it the record is replaced.
	Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error
	// Update merges fields into an existing record.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}
