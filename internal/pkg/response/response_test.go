package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSuccessAndErrorResponses(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// Test Success
	Success(c, map[string]string{"foo": "bar"}, "ok")
	require.Equal(t, 200, w.Code)
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(200), body["statusCode"]) // json numbers decode to float64
	require.Equal(t, "ok", body["message"])
	require.Contains(t, body, "data")

	// Test Error
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, 400, "bad request", "BAD_REQ")
	require.Equal(t, 400, w.Code)
	var bodyErr map[string]any
	err = json.Unmarshal(w.Body.Bytes(), &bodyErr)
	require.NoError(t, err)
	require.Equal(t, false, bodyErr["success"])
	require.Equal(t, float64(400), bodyErr["statusCode"])
	require.Equal(t, "bad request", bodyErr["message"])
	require.Equal(t, "BAD_REQ", bodyErr["code"])
}

func TestServerError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ServerError(c, "Failed to fetch books", "INTERNAL_ERROR", errors.New("connection reset"), true)
	require.Equal(t, 500, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "connection reset", body["error"])
	require.Equal(t, "INTERNAL_ERROR", body["code"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ServerError(c, "Failed to fetch books", "INTERNAL_ERROR", errors.New("connection reset"), false)
	require.Equal(t, 500, w.Code)
	body = map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotContains(t, body, "error")
	require.Equal(t, "Failed to fetch books", body["message"])
}

func TestErrorWithDetailAndData(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithDetail(c, 500, "Failed to create book", "BOOK_CREATE_FAILED", "disk full")
	require.Equal(t, 500, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "disk full", body["error"])
	require.NotContains(t, body, "data")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	TooManyRequests(c, "slow down", map[string]any{"retry_after": "6s"})
	require.Equal(t, 429, w.Code)
	body = map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "RATE_LIMITED", body["code"])
	require.Equal(t, "6s", body["data"].(map[string]any)["retry_after"])
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, gin.H{"id": "1"}, "Book created")
	require.Equal(t, 201, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(201), body["statusCode"])
}
