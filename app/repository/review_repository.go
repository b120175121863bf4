package repository

import (
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
)

// reviewRepository implements the ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("User").First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByProductID(productID uint, offset, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}

// AverageRating computes the mean rating of a product's reviews; zero when
// there are none.
func (r *reviewRepository) AverageRating(productID uint) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("AVG(rating)").Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *reviewRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *reviewRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *reviewRepository) GetCommentsByReviewID(reviewID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User").
		Where("review_id = ?", reviewID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *reviewRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
