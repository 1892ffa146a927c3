package books

import (
	"context"
	"errors"
	"time"

	apperr "github.com/xyz-asif/ebooks/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the persistence the books feature depends on
type Store interface {
	Create(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	FindDetail(ctx context.Context, id string) (*BookDetail, error)
	List(ctx context.Context, opts *ListOptions) ([]BookDetail, int64, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("books")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "genres", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
	})

	return &Repository{collection: collection}
}

// populate joins genre names and the owner's username. Only the username
// leaves the users collection.
func populate() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "genres",
			"localField":   "genres",
			"foreignField": "_id",
			"as":           "genres",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "users",
			"let":  bson.M{"uid": "$user"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$uid"}}}},
				bson.M{"$project": bson.M{"username": 1}},
			},
			"as": "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}
}

func (r *Repository) Create(ctx context.Context, book *Book) error {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, book)
	if err != nil {
		return err
	}
	book.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrInvalidID
	}

	var book Book
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *Repository) FindDetail(ctx context.Context, id string) (*BookDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrInvalidID
	}

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$limit", Value: 1}},
	}, populate()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, apperr.ErrNotFound
	}

	var book BookDetail
	if err := cursor.Decode(&book); err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns one page of populated books plus the total count for the filter.
func (r *Repository) List(ctx context.Context, opts *ListOptions) ([]BookDetail, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, opts.Filter)
	if err != nil {
		return nil, 0, err
	}

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: opts.Filter}},
		{{Key: "$sort", Value: opts.Sort}},
		{{Key: "$skip", Value: opts.Skip}},
		{{Key: "$limit", Value: int64(opts.Limit)}},
	}, populate()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	books := []BookDetail{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *Repository) Update(ctx context.Context, book *Book) error {
	book.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": book.ID}, bson.M{
		"$set": bson.M{
			"title":             book.Title,
			"description":       book.Description,
			"author":            book.Author,
			"year":              book.Year,
			"genres":            book.Genres,
			"bookFileName":      book.BookFileName,
			"thumbnailFileName": book.ThumbnailFileName,
			"thumbnailUrl":      book.ThumbnailURL,
			"thumbnailPublicId": book.ThumbnailPublicID,
			"updatedAt":         book.UpdatedAt,
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
