// Package logoprocessor handles product logo uploads: validation, variant
// generation and the object storage mirror of the original file.
package logoprocessor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/internal/pkg/s3store"
	"github.com/subtally/subtally/internal/pkg/upload"
)

const (
	UploadBasePath = "uploads/logos"

	ThumbnailSize = 64
	SmallSize     = 256

	MaxFileSize = 5 * 1024 * 1024 // 5 MiB is plenty for a logo
)

// Process validates raw upload bytes, writes the original plus two derived
// variants to the local uploads tree and returns the logo record ready to be
// persisted. Mirroring to object storage is a separate, best-effort step
// (see Mirror).
func Process(productID uint, fileName string, data []byte) (*models.ProductLogo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("logo exceeds the %d byte limit", MaxFileSize)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := upload.ValidateImageBySniff(fileName, head); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	logoUUID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(fileName))
	now := time.Now()

	dir := filepath.Join(UploadBasePath, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	originalPath := filepath.Join(dir, logoUUID+ext)
	if err := os.WriteFile(originalPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write original: %w", err)
	}

	// Variants are always encoded as PNG; the original keeps its format.
	thumbPath := filepath.Join(dir, logoUUID+"_thumb.png")
	if err := imaging.Save(imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos), thumbPath); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	smallPath := filepath.Join(dir, logoUUID+"_small.png")
	if err := imaging.Save(imaging.Fit(img, SmallSize, SmallSize, imaging.Lanczos), smallPath); err != nil {
		return nil, fmt.Errorf("failed to save small variant: %w", err)
	}

	return &models.ProductLogo{
		ProductID:     productID,
		UUID:          logoUUID,
		FileName:      fileName,
		FileType:      ext,
		FileSize:      int64(len(data)),
		FilePath:      originalPath,
		ThumbnailPath: thumbPath,
		SmallPath:     smallPath,
	}, nil
}

// Mirror uploads the logo original to object storage when mirroring is
// enabled. The local copy stays authoritative; a mirror failure is
// reported but leaves the logo usable.
func Mirror(logo *models.ProductLogo) error {
	cfg, err := s3store.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := s3store.NewClient(cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	objectKey := cfg.GetObjectKey(logo.UUID, logo.FileType, now.Year(), int(now.Month()))

	if _, err := client.UploadFile(logo.FilePath, objectKey); err != nil {
		return err
	}

	logo.ObjectKey = objectKey
	logo.MirroredAt = &now
	log.Infof("[LogoProcessor] Mirrored logo %s to %s", logo.UUID, objectKey)
	return nil
}

// Remove deletes the local files and, when mirrored, the stored object.
func Remove(logo *models.ProductLogo) {
	for _, path := range []string{logo.FilePath, logo.ThumbnailPath, logo.SmallPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("[LogoProcessor] Failed to remove %s: %v", path, err)
		}
	}

	if logo.ObjectKey == "" {
		return
	}
	cfg, err := s3store.LoadConfig()
	if err != nil || !cfg.IsEnabled() {
		return
	}
	client, err := s3store.NewClient(cfg)
	if err != nil {
		log.Warnf("[LogoProcessor] Failed to init storage client: %v", err)
		return
	}
	if err := client.DeleteFile(logo.ObjectKey); err != nil {
		log.Warnf("[LogoProcessor] Failed to delete mirrored object %s: %v", logo.ObjectKey, err)
	}
}
