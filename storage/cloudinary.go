package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"event-marketplace-server/config"
)

// CloudinaryStorage stores uploads in Cloudinary.
type CloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	baseFolder string
}

// NewCloudinaryStorage builds a CloudinaryStorage from the application config.
func NewCloudinaryStorage(cfg config.CloudinaryConfig) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary is not configured (CLOUDINARY_CLOUD_NAME/API_KEY/API_SECRET)")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", cfg.APIKey, cfg.APISecret, cfg.CloudName)
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStorage{cld: cld, baseFolder: cfg.Folder}, nil
}

func (s *CloudinaryStorage) Store(ctx context.Context, r io.Reader, folder, filename string, size int64) (Handle, error) {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	publicID := fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])

	overwrite := false
	unique := true
	up, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         s.baseFolder + "/" + folder,
		PublicID:       publicID,
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "auto",
	})
	if err != nil {
		return Handle{}, err
	}

	stored := int64(up.Bytes)
	if stored == 0 {
		stored = size
	}

	return Handle{
		URL:      up.SecureURL,
		PublicID: up.PublicID,
		Size:     stored,
	}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
