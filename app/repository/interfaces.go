package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/internal/pkg/reminder"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// CategoryRepository defines the interface for category operations
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Update(category *models.Category) error
	Delete(id uint) error
	List() ([]models.Category, error)
}

// VendorRepository defines the interface for vendor operations
type VendorRepository interface {
	Create(vendor *models.Vendor) error
	GetByID(id uint) (*models.Vendor, error)
	GetByOwnerID(ownerID uint) ([]models.Vendor, error)
	Update(vendor *models.Vendor) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Vendor, error)
	Count() (int64, error)
}

// ProductRepository defines the interface for product and tier operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Product, error)
	ListByCategory(categoryID uint, offset, limit int) ([]models.Product, error)
	ListByVendor(vendorID uint) ([]models.Product, error)
	Search(query string) ([]models.Product, error)
	Count() (int64, error)

	CreateTier(tier *models.Tier) error
	GetTierByID(id uint) (*models.Tier, error)
	GetTiersByProductID(productID uint) ([]models.Tier, error)
	UpdateTier(tier *models.Tier) error
	DeleteTier(id uint) error

	SaveLogo(logo *models.ProductLogo) error
	GetLogoByProductID(productID uint) (*models.ProductLogo, error)
}

// ReviewRepository defines the interface for review and comment operations
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id uint) (*models.Review, error)
	GetByProductID(productID uint, offset, limit int) ([]models.Review, error)
	Delete(id uint) error
	AverageRating(productID uint) (float64, error)

	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByReviewID(reviewID uint) ([]models.Comment, error)
	DeleteComment(id uint) error
}

// SubscriptionRepository defines the interface for subscription operations.
// It doubles as the reminder batch's reader and dedup marker.
type SubscriptionRepository interface {
	reminder.Reader
	reminder.Marker

	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	GetActiveByUserID(userID uint) ([]models.Subscription, error)
	Unsubscribe(id uint, at time.Time) error
	CountActive() (int64, error)
}

// Repositories bundles all repository implementations
type Repositories struct {
	User         UserRepository
	Category     CategoryRepository
	Vendor       VendorRepository
	Product      ProductRepository
	Review       ReviewRepository
	Subscription SubscriptionRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Category:     NewCategoryRepository(db),
		Vendor:       NewVendorRepository(db),
		Product:      NewProductRepository(db),
		Review:       NewReviewRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}
