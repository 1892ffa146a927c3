package books

import (
	"errors"
	"regexp"
	"strings"

	"github.com/xyz-asif/ebooks/internal/pkg/pagination"
	"github.com/xyz-asif/ebooks/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultSortField = "createdAt"

var ErrInvalidYear = errors.New("Year must be a valid number")

// CatalogQuery is the query string accepted by GET /books
type CatalogQuery struct {
	Search    string `form:"search"`
	Genre     string `form:"genre"`
	Author    string `form:"author"`
	Year      string `form:"year"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

// ListOptions is a ready-to-run filter, sort and page window
type ListOptions struct {
	Filter bson.M
	Sort   bson.D
	Page   int
	Limit  int
	Skip   int64
}

func containsCI(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// BuildListOptions turns catalog parameters into a Mongo filter, sort and window.
// Unknown genre ids are ignored; a non-numeric year is an error.
func BuildListOptions(q CatalogQuery) (*ListOptions, error) {
	filter := bson.M{}

	if search := strings.TrimSpace(q.Search); search != "" {
		re := containsCI(search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"author": re},
		}
	}

	if genre := strings.TrimSpace(q.Genre); genre != "" {
		if oid, err := primitive.ObjectIDFromHex(genre); err == nil {
			filter["genres"] = oid
		}
	}

	if author := strings.TrimSpace(q.Author); author != "" {
		filter["author"] = containsCI(author)
	}

	if year := strings.TrimSpace(q.Year); year != "" {
		y, ok := validator.ParseYear(year)
		if !ok {
			return nil, ErrInvalidYear
		}
		filter["year"] = y
	}

	req := pagination.FromRequest(q.Page, q.Limit)

	return &ListOptions{
		Filter: filter,
		Sort:   buildSort(q.SortBy, q.SortOrder),
		Page:   req.Page,
		Limit:  req.Limit,
		Skip:   req.Skip(),
	}, nil
}

// OwnerListOptions lists one user's books, newest first.
func OwnerListOptions(owner primitive.ObjectID, page, limit string) *ListOptions {
	req := pagination.FromRequest(page, limit)
	return &ListOptions{
		Filter: bson.M{"user": owner},
		Sort:   buildSort("", ""),
		Page:   req.Page,
		Limit:  req.Limit,
		Skip:   req.Skip(),
	}
}

func buildSort(sortBy, sortOrder string) bson.D {
	field := strings.TrimSpace(sortBy)
	// Operator-like keys are rejected by the server.
	if field == "" || strings.HasPrefix(field, "$") {
		field = defaultSortField
	}

	order := -1
	if sortOrder == "asc" {
		order = 1
	}

	sort := bson.D{{Key: field, Value: order}}
	if field != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: order})
	}
	return sort
}
