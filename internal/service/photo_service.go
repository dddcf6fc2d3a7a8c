package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/jls/financesuite/finance-backend/internal/repository/storage"
)

const (
	MaxPhotoSize   = 5 * 1024 * 1024 // 5MB
	MinPhotoWidth  = 50
	MinPhotoHeight = 50
	DisplayWidth   = 800
	JPEGQuality    = 85

	// PhotoURLExpiry is how long presigned photo URLs stay valid
	PhotoURLExpiry = 15 * time.Minute
)

var (
	ErrPhotoTooLarge              = errors.New("file too large. Maximum size is 5MB")
	ErrPhotoInvalidFormat         = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrPhotoTooSmall              = errors.New("image too small. Minimum 50x50 pixels")
	ErrPhotoInvalidData           = errors.New("invalid image data")
	ErrPhotoStorageNotConfigured  = errors.New("photo storage not configured")
)

// allowedPhotoExtensions maps extensions to content types
var allowedPhotoExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// PhotoService processes and stores customer KYC photos
type PhotoService struct {
	storage storage.PhotoRepository
}

// NewPhotoService creates a new PhotoService
func NewPhotoService(storage storage.PhotoRepository) *PhotoService {
	return &PhotoService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *PhotoService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the photo and returns the decoded image
func (s *PhotoService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedPhotoExtensions[ext]; !ok {
		return nil, ErrPhotoInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrPhotoInvalidData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinPhotoWidth || bounds.Dy() < MinPhotoHeight {
		return nil, ErrPhotoTooSmall
	}

	return img, nil
}

// ProcessAndUpload validates, resizes and stores a customer photo,
// returning the stored object key.
func (s *PhotoService) ProcessAndUpload(ctx context.Context, companyID int32, customerID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrPhotoStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return "", err
	}

	if img.Bounds().Dx() > DisplayWidth {
		img = imaging.Resize(img, DisplayWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode photo: %w", err)
	}

	objectKey := fmt.Sprintf("%d/customers/%d/%s.jpg", companyID, customerID, uuid.New().String())
	return s.storage.Upload(ctx, objectKey, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
}

// PresignedURL returns a temporary URL for a stored photo
func (s *PhotoService) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrPhotoStorageNotConfigured
	}
	return s.storage.GeneratePresignedURL(ctx, objectKey, PhotoURLExpiry)
}

// DeletePhoto removes a stored photo, best effort
func (s *PhotoService) DeletePhoto(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrPhotoStorageNotConfigured
	}
	return s.storage.Delete(ctx, objectKey)
}
