package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewTaskRepository(db *mongo.Database, seq *Sequence) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), seq: seq}
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Task
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByOwner returns the owner's tasks in id order.
func (r *TaskRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *TaskRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{})
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := make([]*domain.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save inserts tasks with ID 0 under a fresh id and replaces existing ones.
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	if task.ID == 0 {
		id, err := r.seq.Next(ctx, collectionTasks)
		if err != nil {
			return err
		}
		task.ID = id

		insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		if _, err := r.col.InsertOne(insertCtx, task); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// EnsureIndexes creates the owner index used by scoped listing.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}
