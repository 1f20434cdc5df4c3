package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Store groups the repositories that share one database and id sequence.
type Store struct {
	client *mongo.Client
	Users  *UserRepository
	Roles  *RoleRepository
	Tasks  *TaskRepository
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	seq := NewSequence(db)
	return &Store{
		client: client,
		Users:  NewUserRepository(db, seq),
		Roles:  NewRoleRepository(db),
		Tasks:  NewTaskRepository(db, seq),
	}
}

// EnsureIndexes creates the indexes of every collection. Run once at startup
// before seeding.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := s.Roles.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("roles indexes: %w", err)
	}
	if err := s.Tasks.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("tasks indexes: %w", err)
	}
	return nil
}

// Ping reports whether the primary is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
