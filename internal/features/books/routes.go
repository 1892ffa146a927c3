package books

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the /books endpoints. Static segments are
// registered before /:id.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	books := router.Group("/books")
	{
		books.GET("", handler.List)
		books.GET("/my-books", authMiddleware, handler.MyBooks)
		books.GET("/thumbnail/:thumbnailName", handler.Thumbnail)
		books.GET("/file/:bookName", handler.File)
		books.GET("/:id", handler.Get)

		books.POST("", authMiddleware, handler.Create)
		books.PUT("/:id", authMiddleware, handler.Update)
		books.DELETE("/:id", authMiddleware, handler.Delete)
	}
}
