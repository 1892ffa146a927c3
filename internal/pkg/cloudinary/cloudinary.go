package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Service mirrors generated thumbnails to Cloudinary
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"fileSize"`
	Format   string `json:"format"`
}

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	if uploadFolder == "" {
		uploadFolder = "ebooks"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// CloudName is used by the preflight check
func (s *Service) CloudName() string {
	return s.cld.Config.Cloud.CloudName
}

// UploadThumbnail uploads a rendered PNG from disk. The public id is the file stem,
// so re-uploading the same thumbnail overwrites it.
func (s *Service) UploadThumbnail(ctx context.Context, path string) (*UploadResult, error) {
	publicID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	result, err := s.cld.Upload.Upload(ctx, path, uploader.UploadParams{
		Folder:       s.uploadFolder + "/thumbnails",
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload thumbnail: %s", result.Error.Message)
	}

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Width:    result.Width,
		Height:   result.Height,
		FileSize: int64(result.Bytes),
		Format:   result.Format,
	}, nil
}

// Delete removes an image asset from Cloudinary
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("publicID is required")
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}
