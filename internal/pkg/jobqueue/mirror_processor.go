package jobqueue

import (
	"fmt"

	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/logoprocessor"
	"github.com/subtally/subtally/internal/pkg/s3store"
)

// processLogoMirrorJob uploads a locally stored product logo to S3 and
// records the object key on the logo row.
func (q *Queue) processLogoMirrorJob(job *Job) error {
	payload, err := LogoMirrorJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid logo mirror payload: %w", err)
	}

	cfg, err := s3store.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.IsEnabled() {
		// Mirroring was switched off after the job was enqueued.
		return nil
	}

	productRepo := repository.GetGlobalFactory().GetProductRepository()
	logo, err := productRepo.GetLogoByProductID(payload.ProductID)
	if err != nil {
		return fmt.Errorf("could not load logo for product %d: %w", payload.ProductID, err)
	}
	if logo.ID != payload.LogoID {
		// The logo was replaced while the job sat in the queue; the newer
		// upload enqueued its own mirror job.
		return nil
	}
	if logo.MirroredAt != nil {
		return nil
	}

	if err := logoprocessor.Mirror(logo); err != nil {
		return err
	}
	return productRepo.SaveLogo(logo)
}
