package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/books/:id", func(c *gin.Context) { c.Status(404) })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/books/abc", nil))
	require.Equal(t, 404, w.Code)
	m.BookUploaded()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `http_requests_total{method="GET",path="/api/books/:id",status="404"} 1`)
	require.Contains(t, body, "books_uploaded_total 1")
}
