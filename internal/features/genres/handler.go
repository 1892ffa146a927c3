package genres

import (
	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/response"
)

type Handler struct {
	service *Service
	debug   bool
}

func NewHandler(service *Service, debug bool) *Handler {
	return &Handler{service: service, debug: debug}
}

// List godoc
// @Summary List genres
// @Description Get every genre in the taxonomy, sorted by name
// @Tags books
// @Produce json
// @Success 200 {object} response.APIResponse{data=[]Genre}
// @Failure 500 {object} response.APIResponse
// @Router /books/genres [get]
func (h *Handler) List(c *gin.Context) {
	genres, err := h.service.List(c.Request.Context())
	if err != nil {
		logger.Error("list genres: %v", err)
		response.ServerError(c, "Failed to fetch genres", "GENRES_FAILED", err, h.debug)
		return
	}

	response.Success(c, genres, "ok")
}
