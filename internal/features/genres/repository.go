package genres

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the persistence the genres feature depends on
type Store interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, names []string) error
	List(ctx context.Context) ([]Genre, error)
	FindByNamesOrIDs(ctx context.Context, names []string, ids []primitive.ObjectID) ([]Genre, error)
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("genres")

	_, _ = collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &Repository{collection: collection}
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *Repository) InsertMany(ctx context.Context, names []string) error {
	docs := make([]interface{}, len(names))
	for i, name := range names {
		docs[i] = Genre{Name: name}
	}
	// Unordered so one existing name does not stop the rest.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	genres := []Genre{}
	if err := cursor.All(ctx, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *Repository) FindByNamesOrIDs(ctx context.Context, names []string, ids []primitive.ObjectID) ([]Genre, error) {
	var or bson.A
	if len(names) > 0 {
		or = append(or, bson.M{"name": bson.M{"$in": names}})
	}
	if len(ids) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": ids}})
	}
	if len(or) == 0 {
		return []Genre{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"$or": or})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	genres := []Genre{}
	if err := cursor.All(ctx, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}
