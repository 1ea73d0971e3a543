package mongodb

import (
	"context"
	"fmt"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexOperations creates the indexes the portal's queries depend on.
type IndexOperations struct {
	db     DatabaseInterface
	logger logger.Logger
}

func NewIndexOperations(db DatabaseInterface, log logger.Logger) *IndexOperations {
	return &IndexOperations{db: db, logger: log.WithComponent("mongo-indexes")}
}

// IndexPlan lists the index models per collection.
type IndexPlan map[string][]mongo.IndexModel

// PlanIndexes returns the sort index of every ordered listing, the unread-count
// indexes of the inboxes and the unique lead indexes.
func PlanIndexes(registry *model.Registry) IndexPlan {
	plan := IndexPlan{}
	for _, name := range registry.Names() {
		l, _ := registry.Lookup(name)
		if l.Ordered() {
			plan[l.Collection] = append(plan[l.Collection], mongo.IndexModel{
				Keys:    buildSort(l.Orders()),
				Options: options.Index().SetName(l.OrderField + "_desc_id_desc"),
			})
		}
		if l.HasReadFlag {
			plan[l.Collection] = append(plan[l.Collection], mongo.IndexModel{
				Keys:    bson.D{{Key: model.FieldRead, Value: 1}},
				Options: options.Index().SetName("read"),
			})
		}
	}
	for _, target := range []model.TargetType{model.TargetCollege, model.TargetUniversity} {
		field := target.IDField()
		plan[model.ListingLeads] = append(plan[model.ListingLeads], mongo.IndexModel{
			Keys: bson.D{{Key: model.LeadStudentID, Value: 1}, {Key: field, Value: 1}},
			Options: options.Index().
				SetName("unique_student_" + field).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
		})
	}
	return plan
}

// EnsureIndexes creates every planned index. Existing indexes are left as they are.
func (i *IndexOperations) EnsureIndexes(ctx context.Context, plan IndexPlan) error {
	for collection, models := range plan {
		names, err := i.db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		i.logger.WithFields(map[string]interface{}{"collection": collection, "indexes": names}).Info("indexes ensured")
	}
	return nil
}
