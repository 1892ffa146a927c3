package books

// Swagger API metadata is defined globally in cmd/api/main.go

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/ebooks/internal/features/auth"
	"github.com/xyz-asif/ebooks/internal/features/genres"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/response"
	"github.com/xyz-asif/ebooks/internal/pkg/storage"
	apperr "github.com/xyz-asif/ebooks/pkg/errors"
)

// formOverhead leaves room for text fields next to the PDF.
const formOverhead = 1 << 20

type Handler struct {
	service   *Service
	maxUpload int64
	debug     bool
}

// NewHandler builds the books handler. With debug set, 500 responses carry the cause.
func NewHandler(service *Service, maxUpload int64, debug bool) *Handler {
	return &Handler{service: service, maxUpload: maxUpload, debug: debug}
}

// writeError maps service errors to responses. fallback is the 500 message.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalidID):
		response.NotFound(c, "Book not found", "BOOK_NOT_FOUND")
	case errors.Is(err, apperr.ErrForbidden):
		response.Forbidden(c, "You are not allowed to modify this book", "NOT_OWNER")
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrFileRequired),
		errors.Is(err, ErrTooManyFiles),
		errors.Is(err, ErrInvalidYear),
		errors.Is(err, genres.ErrInvalidGenres):
		response.BadRequest(c, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, storage.ErrNotPDF), errors.Is(err, storage.ErrFileTooLarge):
		response.BadRequest(c, err.Error(), "INVALID_FILE")
	case errors.Is(err, ErrThumbnail):
		logger.Error("%s: %v", fallback, err)
		response.ServerError(c, ErrThumbnail.Error(), "THUMBNAIL_FAILED", err, h.debug)
	default:
		logger.Error("%s: %v", fallback, err)
		response.ServerError(c, fallback, "INTERNAL_ERROR", err, h.debug)
	}
}

// readInput collects book fields and every uploaded file from a multipart
// or urlencoded body. Genres may repeat as genres or genres[], or be comma separated.
func (h *Handler) readInput(c *gin.Context) (BookInput, error) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverhead)
	}

	var in BookInput
	values := map[string][]string{}

	form, err := c.MultipartForm()
	switch {
	case err == nil:
		values = form.Value
		for _, headers := range form.File {
			in.Files = append(in.Files, headers...)
		}
	case errors.Is(err, http.ErrNotMultipart):
		if err := c.Request.ParseForm(); err != nil {
			return in, err
		}
		values = c.Request.PostForm
	default:
		return in, err
	}

	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	in.Title = first("title")
	in.Description = first("description")
	in.Author = first("author")
	in.Year = first("year")

	for _, key := range []string{"genres", "genres[]"} {
		for _, v := range values[key] {
			in.Genres = append(in.Genres, strings.Split(v, ",")...)
		}
	}
	return in, nil
}

func (h *Handler) formError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.BadRequest(c, storage.ErrFileTooLarge.Error(), "INVALID_FILE")
		return
	}
	response.BadRequest(c, "Invalid form data", "VALIDATION_FAILED")
}

// List godoc
// @Summary Browse the catalog
// @Description Paginated list of books with search, filters and sorting
// @Tags books
// @Produce json
// @Param search query string false "Case-insensitive match on title, description or author"
// @Param genre query string false "Genre id"
// @Param author query string false "Case-insensitive author match"
// @Param year query int false "Publication year"
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.APIResponse{data=CatalogPage}
// @Failure 400 {object} response.APIResponse
// @Router /books [get]
func (h *Handler) List(c *gin.Context) {
	var q CatalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", "VALIDATION_FAILED")
		return
	}

	page, err := h.service.Catalog(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err, "Failed to fetch books")
		return
	}

	response.Success(c, page, "ok")
}

// MyBooks godoc
// @Summary List my books
// @Description Paginated list of the books uploaded by the current user
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.APIResponse{data=CatalogPage}
// @Failure 401 {object} response.APIResponse
// @Router /books/my-books [get]
func (h *Handler) MyBooks(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
		return
	}

	page, err := h.service.MyBooks(c.Request.Context(), user.ID, c.Query("page"), c.Query("limit"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch books")
		return
	}

	response.Success(c, page, "ok")
}

// Get godoc
// @Summary Get a book
// @Description Get one book with its genres and owner
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.APIResponse{data=BookDetail}
// @Failure 404 {object} response.APIResponse
// @Router /books/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	book, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch book")
		return
	}

	response.Success(c, book, "ok")
}

// Create godoc
// @Summary Upload a book
// @Description Upload a PDF with its metadata; the first page becomes the thumbnail
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param author formData string true "Author"
// @Param year formData int true "Publication year"
// @Param genres formData []string true "Genre names or ids" collectionFormat(multi)
// @Param file formData file true "PDF file"
// @Success 201 {object} response.APIResponse{data=Book}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 500 {object} response.APIResponse
// @Router /books [post]
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
		return
	}

	in, err := h.readInput(c)
	if err != nil {
		h.formError(c, err)
		return
	}

	book, err := h.service.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		h.writeError(c, err, "Failed to create book")
		return
	}

	response.Created(c, book, "Book created successfully")
}

// Update godoc
// @Summary Update a book
// @Description Update metadata and optionally replace the PDF. Only the owner may update.
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param author formData string false "Author"
// @Param year formData int false "Publication year"
// @Param genres formData []string false "Genre names or ids" collectionFormat(multi)
// @Param file formData file false "Replacement PDF"
// @Success 200 {object} response.APIResponse{data=Book}
// @Failure 400 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /books/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
		return
	}

	in, err := h.readInput(c)
	if err != nil {
		h.formError(c, err)
		return
	}

	book, err := h.service.Update(c.Request.Context(), user.ID, c.Param("id"), in)
	if err != nil {
		h.writeError(c, err, "Failed to update book")
		return
	}

	response.Success(c, book, "Book updated successfully")
}

// Delete godoc
// @Summary Delete a book
// @Description Delete a book and its files. Only the owner may delete.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 200 {object} response.APIResponse{data=DeleteResult}
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /books/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
		return
	}

	if err := h.service.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to delete book")
		return
	}

	response.Success(c, DeleteResult{Message: "Book deleted successfully"}, "Book deleted successfully")
}

func (h *Handler) serveFile(c *gin.Context, kind storage.Kind, name string) {
	path, err := h.service.FilePath(kind, name)
	switch {
	case err == nil:
		c.File(path)
	case errors.Is(err, storage.ErrInvalidName):
		response.BadRequest(c, "Invalid file name", "INVALID_FILE_NAME")
	case errors.Is(err, apperr.ErrNotFound):
		response.NotFound(c, "File not found", "FILE_NOT_FOUND")
	default:
		logger.Error("serve %s: %v", name, err)
		response.ServerError(c, "Failed to read file", "INTERNAL_ERROR", err, h.debug)
	}
}

// Thumbnail godoc
// @Summary Stream a thumbnail
// @Tags books
// @Produce png
// @Param thumbnailName path string true "Thumbnail file name"
// @Success 200 {file} binary
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /books/thumbnail/{thumbnailName} [get]
func (h *Handler) Thumbnail(c *gin.Context) {
	h.serveFile(c, storage.Thumbnails, c.Param("thumbnailName"))
}

// File godoc
// @Summary Stream a book PDF
// @Tags books
// @Produce application/pdf
// @Param bookName path string true "Book file name"
// @Success 200 {file} binary
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /books/file/{bookName} [get]
func (h *Handler) File(c *gin.Context) {
	h.serveFile(c, storage.Books, c.Param("bookName"))
}
