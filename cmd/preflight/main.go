// Command preflight checks that every backend in .env is reachable before a deploy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/xyz-asif/ebooks/internal/config"
	"github.com/xyz-asif/ebooks/internal/database"
	"github.com/xyz-asif/ebooks/internal/pkg/cache"
	"github.com/xyz-asif/ebooks/internal/pkg/cloudinary"
	"github.com/xyz-asif/ebooks/internal/pkg/storage"
)

type check struct {
	name     string
	optional bool
	run      func(ctx context.Context, cfg *config.Config) (string, error)
}

func checkMongo(ctx context.Context, cfg *config.Config) (string, error) {
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return "", err
	}
	defer db.Disconnect(ctx)

	if err := db.HealthCheck(ctx); err != nil {
		return "", err
	}
	return "database " + cfg.MongoDB, nil
}

func checkConverter(_ context.Context, cfg *config.Config) (string, error) {
	path, err := exec.LookPath(cfg.PDFConverter)
	if err != nil {
		return "", err
	}
	return path, nil
}

func checkStorage(_ context.Context, cfg *config.Config) (string, error) {
	files, err := storage.NewLocal(cfg.UploadedBooksPath, cfg.UploadedThumbnailsPath, cfg.MaxUploadSize)
	if err != nil {
		return "", err
	}
	return files.BooksDir() + ", " + files.ThumbnailsDir(), nil
}

func checkRedis(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.RedisAddr == "" {
		return "not configured, in-memory cache will be used", nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return "", err
	}
	defer rdb.Close()
	return cfg.RedisAddr, nil
}

func checkKafka(ctx context.Context, cfg *config.Config) (string, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return "not configured, events will only be logged", nil
	}
	conn, err := kafka.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
	if err != nil {
		return "", err
	}
	defer conn.Close()

	brokers, err := conn.Brokers()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d broker(s), topic %s", len(brokers), cfg.KafkaBookTopic), nil
}

func checkCloudinary(_ context.Context, cfg *config.Config) (string, error) {
	if !cfg.CloudinaryEnabled() {
		return "not configured, thumbnails served locally only", nil
	}
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cloud %s, folder %s", cld.CloudName(), cfg.CloudinaryUploadFolder), nil
}

func main() {
	cfg := config.Load()

	checks := []check{
		{name: "MongoDB", run: checkMongo},
		{name: "PDF converter", run: checkConverter},
		{name: "Upload directories", run: checkStorage},
		{name: "Redis", optional: true, run: checkRedis},
		{name: "Kafka", optional: true, run: checkKafka},
		{name: "Cloudinary", optional: true, run: checkCloudinary},
	}

	failed := 0
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		detail, err := c.run(ctx, cfg)
		cancel()

		switch {
		case err == nil:
			fmt.Printf("✅ %s: %s\n", c.name, detail)
		case c.optional:
			fmt.Printf("⚠️  %s: %v\n", c.name, err)
		default:
			fmt.Printf("❌ %s: %v\n", c.name, err)
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d required check(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("\n🎉 All systems ready!")
}
