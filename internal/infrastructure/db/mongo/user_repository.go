package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const (
	collectionUsers = "users"

	indexUsername = "uniq_username"
	indexEmail    = "uniq_email"
)

type UserRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewUserRepository(db *mongo.Database, seq *Sequence) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers), seq: seq}
}

// userDoc stores roles by name; roles are immutable once seeded.
type userDoc struct {
	ID           int64     `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Roles        []string  `bson:"roles"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u *domain.User) userDoc {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r.Name))
	}
	return userDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	roles := make([]domain.Role, 0, len(d.Roles))
	for _, r := range d.Roles {
		roles = append(roles, domain.Role{Name: domain.RoleName(r)})
	}
	return &domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        roles,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": strings.ToLower(email)})
}

// Create inserts the user under a fresh id. The unique indexes decide races
// between concurrent registrations.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	id, err := r.seq.Next(ctx, collectionUsers)
	if err != nil {
		return nil, err
	}

	doc := toUserDoc(user)
	doc.ID = id

	insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(insertCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// duplicateUserError tells the two unique indexes apart by name.
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), indexEmail) {
		return domain.ErrEmailTaken
	}
	return domain.ErrUsernameTaken
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the unique indexes on username and email.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexUsername),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexEmail),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
