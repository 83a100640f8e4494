package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/models"
	"restaurant-pos/repository"
	"restaurant-pos/storage"
)

const (
	// Menu thumbnails are shown small on the POS grid.
	imageMaxDim  = 800
	imageQuality = 75
	// Reject uploads above this before decoding.
	maxUploadBytes = 10 << 20
)

var ErrImageTooLarge = errors.New("image exceeds upload limit")

// OptimizeImage decodes PNG/JPEG bytes, fits them inside maxDim and
// re-encodes as JPEG at quality.
func OptimizeImage(imageData []byte, maxDim, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, errors.Wrap(models.ErrValidation, "failed to decode image: "+err.Error())
	}

	log.Printf("📸 Image decoded: format=%s, bounds=%v", format, img.Bounds())

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		// Fit keeps the aspect ratio inside a maxDim square.
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		log.Printf("🔄 Resized image: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "failed to encode to JPEG")
	}

	log.Printf("✓ Image optimized: quality=%d, output_size=%d bytes", quality, buf.Len())
	return buf.Bytes(), nil
}

// ImageService optimizes item images and hands them to storage
type ImageService struct {
	items repository.ItemRepositoryInterface
	store storage.Storage
}

// NewImageService creates a new ImageService
func NewImageService(items repository.ItemRepositoryInterface, store storage.Storage) *ImageService {
	return &ImageService{items: items, store: store}
}

// UploadItemImage stores a new picture for an item and records its URL
func (s *ImageService) UploadItemImage(ctx context.Context, itemID int64, r io.Reader, filename string) (*models.Item, error) {
	if _, err := s.items.Get(ctx, itemID); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if len(raw) > maxUploadBytes {
		return nil, ErrImageTooLarge
	}

	optimized, err := OptimizeImage(raw, imageMaxDim, imageQuality)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + ".jpg"
	res, err := s.store.Put(ctx, bytes.NewReader(optimized), storage.PutInput{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(optimized)),
	})
	if err != nil {
		log.Printf("❌ UploadItemImage: item=%d: %v", itemID, err)
		return nil, err
	}

	item, err := s.items.SetImageURL(ctx, itemID, res.URL)
	if err != nil {
		// Do not leave an orphan object behind.
		if derr := s.store.Delete(ctx, res.Key); derr != nil {
			log.Printf("⚠️  UploadItemImage: cleanup of %s failed: %v", res.Key, derr)
		}
		return nil, err
	}

	log.Printf("✅ UploadItemImage: item=%d url=%s", itemID, res.URL)
	return item, nil
}
