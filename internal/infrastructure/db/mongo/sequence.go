package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionCounters = "counters"

// Sequence hands out monotonically increasing int64 ids, one counter
// document per collection.
type Sequence struct {
	col *mongo.Collection
}

func NewSequence(db *mongo.Database) *Sequence {
	return &Sequence{col: db.Collection(collectionCounters)}
}

type counterDoc struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"seq"`
}

// Next atomically increments the named counter and returns the new value.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Value, nil
}
