package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"consultancy-portal/internal/auth/domain/model"
	"consultancy-portal/internal/auth/domain/repository"
	"consultancy-portal/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.AdminRepository = (*MongoAdminRepository)(nil)

// MongoAdminRepository implements AdminRepository over the "admins" collection
type MongoAdminRepository struct {
	admins *mongo.Collection
	now    func() time.Time
}

// NewMongoAdminRepository creates the repository and its unique email index
func NewMongoAdminRepository(ctx context.Context, db *mongo.Database) (*MongoAdminRepository, error) {
	repo := &MongoAdminRepository{
		admins: db.Collection("admins"),
		now:    time.Now,
	}

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	}
	if _, err := repo.admins.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, err
	}
	return repo, nil
}

// GetAdminByEmail returns usecase.ErrAdminNotFound when no admin has that email
func (r *MongoAdminRepository) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.admins.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// UpsertAdmin creates the admin or replaces its name and password hash
func (r *MongoAdminRepository) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	now := r.now().UTC()
	admin.Email = normalizeEmail(admin.Email)
	admin.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"name":          admin.Name,
			"password_hash": admin.PasswordHash,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored model.Admin
	if err := r.admins.FindOneAndUpdate(ctx, bson.M{"email": admin.Email}, update, opts).Decode(&stored); err != nil {
		return err
	}
	admin.ID = stored.ID
	admin.CreatedAt = stored.CreatedAt
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
