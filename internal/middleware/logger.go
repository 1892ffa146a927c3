package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
)

// Logger configuration
type LoggerConfig struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int64 // Max body size to log (in bytes)
	SkipPaths       []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogRequestBody:  true,
		LogResponseBody: false, // Only for errors
		MaxBodySize:     2048,
		SkipPaths:       []string{"/health", "/metrics", "/ping"},
	}
}

func Logger() gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig(), logger.L())
}

func LoggerWithConfig(config LoggerConfig, log *zerolog.Logger) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")

		// Multipart uploads are never buffered for logging.
		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength > 0 &&
			!strings.HasPrefix(contentType, "multipart/") {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[Request body too large to log]"
			} else {
				bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize))
				if err == nil {
					c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
					requestBody = sanitizeBody(string(bodyBytes), contentType)
				}
			}
		}

		writer := &limitedResponseWriter{
			ResponseWriter: c.Writer,
			maxSize:        config.MaxBodySize,
		}
		c.Writer = writer

		c.Next()

		status := writer.Status()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("size", writer.size).
			Str("ip", c.ClientIP())

		if q := c.Request.URL.RawQuery; q != "" {
			event = event.Str("query", truncateString(q, 200))
		}
		if userID := c.GetString("userID"); userID != "" {
			event = event.Str("userId", userID)
		}
		if requestBody != "" {
			event = event.Str("body", requestBody)
		}
		if writer.body.Len() > 0 && (config.LogResponseBody || status >= 400) {
			event = event.Str("response", truncateString(writer.body.String(), 500))
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.Msg("request")
	}
}

// Size-limited response writer - prevents memory issues
type limitedResponseWriter struct {
	gin.ResponseWriter
	body    bytes.Buffer
	size    int64
	maxSize int64
}

func (w *limitedResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)

	if w.size+int64(len(b)) <= w.maxSize {
		w.body.Write(b[:n])
	}
	w.size += int64(n)

	return n, err
}

func sanitizeBody(body, contentType string) string {
	if len(body) == 0 {
		return ""
	}

	if len(body) > 1024 {
		return "[Body too large to log]"
	}

	if strings.Contains(contentType, "application/json") {
		var jsonData interface{}
		if json.Unmarshal([]byte(body), &jsonData) == nil {
			sanitized := hideSensitiveFields(jsonData)
			if formatted, err := json.Marshal(sanitized); err == nil {
				return string(formatted)
			}
		}
	}

	return truncateString(body, 200)
}

func hideSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{})
		for key, value := range v {
			if isSensitiveField(strings.ToLower(key)) {
				result[key] = "********"
			} else {
				result[key] = hideSensitiveFields(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = hideSensitiveFields(item)
		}
		return result
	default:
		return v
	}
}

func isSensitiveField(field string) bool {
	sensitive := []string{"password", "token", "secret", "key", "auth", "credential"}
	for _, s := range sensitive {
		if strings.Contains(field, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
