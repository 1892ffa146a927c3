package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCORS_AllowedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("http://localhost:3000, https://books.example.com/"))
	r.GET("/api/books", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/books", nil)
	req.Header.Set("Origin", "https://books.example.com")
	r.ServeHTTP(w, req)
	require.Equal(t, "https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/books", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("*"))
	r.PUT("/api/books/:id", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/api/books/1", nil)
	req.Header.Set("Origin", "http://anything.test")
	r.ServeHTTP(w, req)

	require.Equal(t, 204, w.Code)
	require.Equal(t, "http://anything.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestLogger_MasksSensitiveFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(LoggerWithConfig(DefaultLoggerConfig(), &log))
	r.POST("/api/users/login", func(c *gin.Context) {
		c.JSON(401, gin.H{"message": "Invalid email or password"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/users/login", strings.NewReader(`{"email":"a@b.co","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 401, w.Code)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, float64(401), entry["status"])
	require.NotContains(t, entry["body"], "hunter22")
	require.Contains(t, entry["body"], "********")
	require.Contains(t, entry["response"], "Invalid email or password")
}

func TestLogger_SkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(LoggerWithConfig(DefaultLoggerConfig(), &log))
	r.GET("/health", func(c *gin.Context) { c.Status(200) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))
	require.Zero(t, buf.Len())
}
