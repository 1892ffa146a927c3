package books

import (
	"mime/multipart"
	"time"

	"github.com/xyz-asif/ebooks/internal/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is the stored document
type Book struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title             string               `bson:"title" json:"title"`
	Description       string               `bson:"description" json:"description"`
	Author            string               `bson:"author" json:"author"`
	Year              int                  `bson:"year" json:"year"`
	Genres            []primitive.ObjectID `bson:"genres" json:"genres"`
	BookFileName      string               `bson:"bookFileName" json:"bookFileName"`
	ThumbnailFileName string               `bson:"thumbnailFileName" json:"thumbnailFileName"`
	ThumbnailURL      string               `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	ThumbnailPublicID string               `bson:"thumbnailPublicId,omitempty" json:"-"`
	User              primitive.ObjectID   `bson:"user" json:"user"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type GenreRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

type OwnerRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
}

// BookDetail is a book with its genres and owner populated
type BookDetail struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Author            string             `bson:"author" json:"author"`
	Year              int                `bson:"year" json:"year"`
	Genres            []GenreRef         `bson:"genres" json:"genres"`
	BookFileName      string             `bson:"bookFileName" json:"bookFileName"`
	ThumbnailFileName string             `bson:"thumbnailFileName" json:"thumbnailFileName"`
	ThumbnailURL      string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	User              *OwnerRef          `bson:"user,omitempty" json:"user,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CatalogPage is one page of the catalog
type CatalogPage struct {
	Books    []BookDetail        `json:"books"`
	Metadata pagination.Metadata `json:"metadata"`
}

// BookInput carries the multipart fields of a create or update request
type BookInput struct {
	Title       string
	Description string
	Author      string
	Year        string
	Genres      []string
	Files       []*multipart.FileHeader
}

// DeleteResult is returned by the delete endpoint
type DeleteResult struct {
	Message string `json:"message" example:"Book deleted successfully"`
}
