package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	JWTExpire   time.Duration
	JWTIssuer   string
	FrontendURL string

	// Local file storage
	UploadedBooksPath      string
	UploadedThumbnailsPath string
	MaxUploadSize          int64
	PDFConverter           string

	// OAuth providers
	GoogleClientID       string
	GoogleClientSecret   string
	GitHubClientID       string
	GitHubClientSecret   string
	OAuthCallbackBaseURL string

	// Cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Events
	KafkaBrokers   []string
	KafkaBookTopic string

	// Thumbnail mirror
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	AuthRateLimit  int
	MetricsEnabled bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "ebooks-db"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		JWTExpire:   getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		JWTIssuer:   getEnv("JWT_ISSUER", "ebooks-api"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		UploadedBooksPath:      getEnv("UPLOADED_BOOKS_PATH", "uploads/books"),
		UploadedThumbnailsPath: getEnv("UPLOADED_THUMBNAILS_PATH", "uploads/thumbnails"),
		MaxUploadSize:          int64(getInt("MAX_UPLOAD_MB", 50)) << 20,
		PDFConverter:           getEnv("PDF_CONVERTER", "pdftoppm"),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GitHubClientID:       os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret:   os.Getenv("GITHUB_CLIENT_SECRET"),
		OAuthCallbackBaseURL: getEnv("OAUTH_CALLBACK_BASE_URL", "http://localhost:8080"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		CacheTTL:      getDuration("CACHE_TTL", 5*time.Minute),

		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaBookTopic: getEnv("KAFKA_BOOK_TOPIC", "book-events"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "ebooks"),

		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 10),
		MetricsEnabled: getBool("METRICS_ENABLED", true),
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CloudinaryEnabled reports whether all mirror credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getDuration accepts Go durations ("24h") and bare hour counts ("24").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}
	log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
