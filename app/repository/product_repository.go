package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Tiers").Preload("Logo").Preload("Category").Preload("Vendor").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Tiers").Preload("Logo").Preload("Category").Preload("Vendor").
		Where("slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

func (r *productRepository) List(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Tiers").Preload("Logo").Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepository) ListByCategory(categoryID uint, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Tiers").Preload("Logo").
		Where("category_id = ?", categoryID).
		Offset(offset).Limit(limit).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) ListByVendor(vendorID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Tiers").Preload("Logo").
		Where("vendor_id = ?", vendorID).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) Search(query string) ([]models.Product, error) {
	var products []models.Product
	like := fmt.Sprintf("%%%s%%", query)
	err := r.db.Preload("Tiers").Preload("Logo").
		Where("name LIKE ? OR description LIKE ?", like, like).
		Limit(50).Find(&products).Error
	return products, err
}

func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepository) CreateTier(tier *models.Tier) error {
	return r.db.Create(tier).Error
}

func (r *productRepository) GetTierByID(id uint) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.Preload("Product").First(&tier, id).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *productRepository) GetTiersByProductID(productID uint) ([]models.Tier, error) {
	var tiers []models.Tier
	err := r.db.Where("product_id = ?", productID).Order("price ASC").Find(&tiers).Error
	return tiers, err
}

func (r *productRepository) UpdateTier(tier *models.Tier) error {
	return r.db.Save(tier).Error
}

func (r *productRepository) DeleteTier(id uint) error {
	return r.db.Delete(&models.Tier{}, id).Error
}

func (r *productRepository) SaveLogo(logo *models.ProductLogo) error {
	return r.db.Save(logo).Error
}

func (r *productRepository) GetLogoByProductID(productID uint) (*models.ProductLogo, error) {
	var logo models.ProductLogo
	err := r.db.Where("product_id = ?", productID).First(&logo).Error
	if err != nil {
		return nil, err
	}
	return &logo, nil
}
