package books

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/xyz-asif/ebooks/internal/pkg/cache"
	"github.com/xyz-asif/ebooks/internal/pkg/cloudinary"
	"github.com/xyz-asif/ebooks/internal/pkg/events"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/metrics"
	"github.com/xyz-asif/ebooks/internal/pkg/pagination"
	"github.com/xyz-asif/ebooks/internal/pkg/storage"
	"github.com/xyz-asif/ebooks/internal/pkg/thumbnail"
	"github.com/xyz-asif/ebooks/internal/pkg/validator"
	apperr "github.com/xyz-asif/ebooks/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingFields = errors.New("All fields are required")
	ErrFileRequired  = errors.New("File is required")
	ErrTooManyFiles  = errors.New("Only one file can be uploaded")
	ErrThumbnail     = errors.New("Failed to generate thumbnail")
)

// FileStore is the on-disk side of a book: the PDF and its rendered cover.
type FileStore interface {
	SaveBook(header *multipart.FileHeader) (string, error)
	Path(kind storage.Kind, name string) (string, error)
	Delete(kind storage.Kind, name string) error
	Exists(kind storage.Kind, name string) bool
}

// GenreResolver maps genre names or ids to stored ids.
type GenreResolver interface {
	Resolve(ctx context.Context, values []string) ([]primitive.ObjectID, error)
}

// Mirror copies thumbnails to a CDN.
type Mirror interface {
	UploadThumbnail(ctx context.Context, path string) (*cloudinary.UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// Deps groups the collaborators of the books service. Mirror, Cache, Events
// and Metrics are optional.
type Deps struct {
	Store      Store
	Genres     GenreResolver
	Files      FileStore
	Thumbnails thumbnail.Generator
	Mirror     Mirror
	Cache      cache.Cache
	CacheTTL   time.Duration
	Events     events.Publisher
	Metrics    *metrics.Metrics
}

type Service struct {
	store   Store
	genres  GenreResolver
	files   FileStore
	thumbs  thumbnail.Generator
	mirror  Mirror
	cache   cache.Cache
	ttl     time.Duration
	events  events.Publisher
	metrics *metrics.Metrics
}

func NewService(deps Deps) *Service {
	s := &Service{
		store:   deps.Store,
		genres:  deps.Genres,
		files:   deps.Files,
		thumbs:  deps.Thumbnails,
		mirror:  deps.Mirror,
		cache:   deps.Cache,
		ttl:     deps.CacheTTL,
		events:  deps.Events,
		metrics: deps.Metrics,
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
	}
	if s.events == nil {
		s.events = events.LogPublisher{}
	}
	return s
}

func cacheKey(id string) string {
	return "book:" + id
}

// storedFiles is what one upload leaves behind.
type storedFiles struct {
	book      string
	thumbnail string
	url       string
	publicID  string
}

// storeUpload writes the PDF, renders its first page and mirrors the cover.
// Nothing is left on disk when it fails.
func (s *Service) storeUpload(ctx context.Context, header *multipart.FileHeader) (*storedFiles, error) {
	name, err := s.files.SaveBook(header)
	if err != nil {
		return nil, err
	}

	pdfPath, err := s.files.Path(storage.Books, name)
	if err != nil {
		_ = s.files.Delete(storage.Books, name)
		return nil, err
	}

	thumbName, err := s.thumbs.Generate(ctx, pdfPath)
	if err != nil {
		logger.Error("thumbnail for %s: %v", name, err)
		if rmErr := s.files.Delete(storage.Books, name); rmErr != nil {
			logger.Warn("failed to remove %s: %v", name, rmErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrThumbnail, err)
	}

	out := &storedFiles{book: name, thumbnail: thumbName}
	if s.mirror != nil {
		if thumbPath, err := s.files.Path(storage.Thumbnails, thumbName); err == nil {
			if res, err := s.mirror.UploadThumbnail(ctx, thumbPath); err != nil {
				logger.Warn("cloudinary upload for %s: %v", thumbName, err)
			} else {
				out.url = res.URL
				out.publicID = res.PublicID
			}
		}
	}
	return out, nil
}

// removeAsync deletes files in the background; failures are only logged.
func (s *Service) removeAsync(bookName, thumbName, publicID string) {
	go func() {
		if err := s.files.Delete(storage.Books, bookName); err != nil {
			logger.Warn("failed to remove book file %s: %v", bookName, err)
		}
		if err := s.files.Delete(storage.Thumbnails, thumbName); err != nil {
			logger.Warn("failed to remove thumbnail %s: %v", thumbName, err)
		}
		if s.mirror != nil && publicID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mirror.Delete(ctx, publicID); err != nil {
				logger.Warn("cloudinary delete %s: %v", publicID, err)
			}
		}
	}()
}

func (s *Service) publish(kind string, book *Book) {
	events.PublishAsync(s.events, events.BookEvent{
		Type:       kind,
		BookID:     book.ID.Hex(),
		OwnerID:    book.User.Hex(),
		Title:      book.Title,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *Service) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := s.cache.Delete(ctx, cacheKey(id.Hex())); err != nil {
		logger.Warn("book cache delete %s: %v", id.Hex(), err)
	}
}

func trimInput(in BookInput) BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Author = strings.TrimSpace(in.Author)
	in.Year = strings.TrimSpace(in.Year)

	genres := make([]string, 0, len(in.Genres))
	for _, g := range in.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	in.Genres = genres
	return in
}

// Create stores a new book owned by owner. Exactly one PDF is required.
func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, in BookInput) (*Book, error) {
	in = trimInput(in)
	if in.Title == "" || in.Description == "" || in.Author == "" || in.Year == "" || len(in.Genres) == 0 {
		return nil, ErrMissingFields
	}
	year, ok := validator.ParseYear(in.Year)
	if !ok {
		return nil, ErrInvalidYear
	}
	switch {
	case len(in.Files) == 0:
		return nil, ErrFileRequired
	case len(in.Files) > 1:
		return nil, ErrTooManyFiles
	}

	genreIDs, err := s.genres.Resolve(ctx, in.Genres)
	if err != nil {
		return nil, err
	}

	files, err := s.storeUpload(ctx, in.Files[0])
	if err != nil {
		return nil, err
	}

	book := &Book{
		Title:             in.Title,
		Description:       in.Description,
		Author:            in.Author,
		Year:              year,
		Genres:            genreIDs,
		BookFileName:      files.book,
		ThumbnailFileName: files.thumbnail,
		ThumbnailURL:      files.url,
		ThumbnailPublicID: files.publicID,
		User:              owner,
	}
	if err := s.store.Create(ctx, book); err != nil {
		s.removeAsync(files.book, files.thumbnail, files.publicID)
		return nil, err
	}

	s.metrics.BookUploaded()
	s.publish(events.BookCreated, book)
	logger.Info("book %s created by %s", book.ID.Hex(), owner.Hex())
	return book, nil
}

// owned loads a book and checks that user owns it.
func (s *Service) owned(ctx context.Context, user primitive.ObjectID, id string) (*Book, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.User != user {
		return nil, apperr.ErrForbidden
	}
	return book, nil
}

// Update applies the non-empty fields of in. A new file replaces the old
// PDF and thumbnail, which are removed once the record is saved.
func (s *Service) Update(ctx context.Context, user primitive.ObjectID, id string, in BookInput) (*Book, error) {
	book, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	in = trimInput(in)
	if len(in.Files) > 1 {
		return nil, ErrTooManyFiles
	}

	if in.Title != "" {
		book.Title = in.Title
	}
	if in.Description != "" {
		book.Description = in.Description
	}
	if in.Author != "" {
		book.Author = in.Author
	}
	if in.Year != "" {
		year, ok := validator.ParseYear(in.Year)
		if !ok {
			return nil, ErrInvalidYear
		}
		book.Year = year
	}
	if len(in.Genres) > 0 {
		ids, err := s.genres.Resolve(ctx, in.Genres)
		if err != nil {
			return nil, err
		}
		book.Genres = ids
	}

	var replaced *storedFiles
	if len(in.Files) == 1 {
		files, err := s.storeUpload(ctx, in.Files[0])
		if err != nil {
			return nil, err
		}
		replaced = &storedFiles{
			book:      book.BookFileName,
			thumbnail: book.ThumbnailFileName,
			publicID:  book.ThumbnailPublicID,
		}
		book.BookFileName = files.book
		book.ThumbnailFileName = files.thumbnail
		book.ThumbnailURL = files.url
		book.ThumbnailPublicID = files.publicID
	}

	if err := s.store.Update(ctx, book); err != nil {
		if replaced != nil {
			s.removeAsync(book.BookFileName, book.ThumbnailFileName, book.ThumbnailPublicID)
		}
		return nil, err
	}

	if replaced != nil {
		s.metrics.BookUploaded()
		s.removeAsync(replaced.book, replaced.thumbnail, replaced.publicID)
	}
	s.invalidate(ctx, book.ID)
	s.publish(events.BookUpdated, book)
	return book, nil
}

// Delete removes the record, then its files in the background.
func (s *Service) Delete(ctx context.Context, user primitive.ObjectID, id string) error {
	book, err := s.owned(ctx, user, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, book.ID); err != nil {
		return err
	}

	s.removeAsync(book.BookFileName, book.ThumbnailFileName, book.ThumbnailPublicID)
	s.invalidate(ctx, book.ID)
	s.publish(events.BookDeleted, book)
	logger.Info("book %s deleted by %s", book.ID.Hex(), user.Hex())
	return nil
}

// Get returns one populated book, cached by id.
func (s *Service) Get(ctx context.Context, id string) (*BookDetail, error) {
	var cached BookDetail
	if found, err := s.cache.Get(ctx, cacheKey(id), &cached); err == nil && found {
		return &cached, nil
	} else if err != nil {
		logger.Warn("book cache read %s: %v", id, err)
	}

	book, err := s.store.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey(id), book, s.ttl); err != nil {
		logger.Warn("book cache write %s: %v", id, err)
	}
	return book, nil
}

func (s *Service) list(ctx context.Context, opts *ListOptions) (*CatalogPage, error) {
	books, total, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &CatalogPage{
		Books:    books,
		Metadata: pagination.New(opts.Page, opts.Limit, total).Metadata(),
	}, nil
}

// Catalog returns one filtered, sorted page of the library.
func (s *Service) Catalog(ctx context.Context, q CatalogQuery) (*CatalogPage, error) {
	opts, err := BuildListOptions(q)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, opts)
}

// MyBooks returns one page of the books owned by owner.
func (s *Service) MyBooks(ctx context.Context, owner primitive.ObjectID, page, limit string) (*CatalogPage, error) {
	return s.list(ctx, OwnerListOptions(owner, page, limit))
}

// FilePath resolves a stored file for streaming. Missing files are ErrNotFound.
func (s *Service) FilePath(kind storage.Kind, name string) (string, error) {
	path, err := s.files.Path(kind, name)
	if err != nil {
		return "", err
	}
	if !s.files.Exists(kind, name) {
		return "", apperr.ErrNotFound
	}
	return path, nil
}
