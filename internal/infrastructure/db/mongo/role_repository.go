package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const collectionRoles = "roles"

type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

type roleDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDoc
	if err := r.col.FindOne(ctx, bson.M{"name": string(name)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: doc.ID.Hex(), Name: domain.RoleName(doc.Name)}, nil
}

// Save upserts by name, so running the seeder twice leaves one document per role.
func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc roleDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"name": string(role.Name)},
		bson.M{"$setOnInsert": bson.M{"name": string(role.Name)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	role.ID = doc.ID.Hex()
	return nil
}

func (r *RoleRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the unique index on the role name.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
