package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "github.com/xyz-asif/ebooks/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore is the persistence the auth feature depends on.
// Find-by-field lookups return (nil, nil) when nothing matches.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByProviderID(ctx context.Context, provider Provider, providerID string) (*User, error)
	LinkProvider(ctx context.Context, userID primitive.ObjectID, provider Provider, providerID string) error
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, hash string) error
}

// Repository handles database interactions for the auth feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	// Provider ids are only unique when present.
	presentString := func(field string) bson.M {
		return bson.M{field: bson.M{"$exists": true, "$type": "string"}}
	}

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(presentString("googleId")),
		},
		{
			Keys:    bson.D{{Key: "githubId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(presentString("githubId")),
		},
	})

	return &Repository{collection: collection}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", apperr.ErrDuplicate, err)
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID finds a user by their MongoDB ID
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrInvalidID
	}

	user, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}
	return user, nil
}

// FindByEmail finds a user by their email address
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername finds a user by their username
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByProviderID finds a user by their Google or GitHub account id
func (r *Repository) FindByProviderID(ctx context.Context, provider Provider, providerID string) (*User, error) {
	field := provider.bsonField()
	if field == "" || providerID == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{field: providerID})
}

// LinkProvider attaches a provider account id to an existing user
func (r *Repository) LinkProvider(ctx context.Context, userID primitive.ObjectID, provider Provider, providerID string) error {
	field := provider.bsonField()
	if field == "" {
		return fmt.Errorf("unknown provider %q", provider)
	}
	return r.update(ctx, userID, bson.M{field: providerID})
}

// UpdatePassword stores a new bcrypt hash
func (r *Repository) UpdatePassword(ctx context.Context, userID primitive.ObjectID, hash string) error {
	return r.update(ctx, userID, bson.M{"password": hash})
}

func (r *Repository) update(ctx context.Context, userID primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", apperr.ErrDuplicate, err)
		}
		return err
	}

	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
