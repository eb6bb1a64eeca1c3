package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted product image, in bytes
const MaxImageSize = 5 << 20

// AllowedImageTypes is the whitelist of uploadable image content types.
// SVG is excluded: it can carry inline scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStorage stores uploaded objects and returns their public URL
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadImageInput is an image upload
type UploadImageInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadImage stores an image for a live product and points the product's
// image reference at it
func (s *ProductService) UploadImage(ctx context.Context, productID string, in UploadImageInput, actor string) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewValidationError("Image storage is not configured")
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(in.ContentType, ";")[0]))
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("Content type %q is not allowed", in.ContentType)).
			WithDetail("field", "file")
	}
	if len(in.Data) == 0 {
		return nil, shared.NewValidationError("Image is empty").WithDetail("field", "file")
	}
	if len(in.Data) > MaxImageSize {
		return nil, shared.NewValidationError("Image cannot exceed 5 MB").WithDetail("field", "file")
	}

	// fail before uploading when the product is gone
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	key := imageKey(productID, in.Filename, ext)
	url, err := s.images.Put(ctx, key, in.Data, contentType)
	if err != nil {
		return nil, shared.NewPersistenceError("upload image", err)
	}

	resp, err := s.applyPatch(ctx, productID, catalog.ProductPatch{ImageURL: &url}, actor)
	if err != nil {
		if delErr := s.images.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	s.logger.Info("Product image uploaded",
		zap.String("product_id", productID),
		zap.String("key", key),
		zap.Int("bytes", len(in.Data)))
	return resp, nil
}

// imageKey builds products/<id>/<uuid><ext>. The original filename only
// contributes its extension when it matches the content type.
func imageKey(productID, filename, ext string) string {
	if e := strings.ToLower(filepath.Ext(filename)); e == ext || (ext == ".jpg" && e == ".jpeg") {
		ext = e
	}
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
}
