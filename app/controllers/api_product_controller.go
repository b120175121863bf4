package controllers

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/jobqueue"
	"github.com/subtally/subtally/internal/pkg/logoprocessor"
	"github.com/subtally/subtally/internal/pkg/metrics/counter"
	"github.com/subtally/subtally/internal/pkg/usercontext"
)

type productRequest struct {
	VendorID    uint   `json:"vendor_id" validate:"required"`
	CategoryID  uint   `json:"category_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Slug        string `json:"slug" validate:"required,max=180"`
	Description string `json:"description" validate:"max=5000"`
	URL         string `json:"url" validate:"omitempty,url,max=255"`
}

type tierRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Price  string `json:"price" validate:"required"`
	Period string `json:"period" validate:"required,oneof=daily weekly monthly yearly"`
}

// HandleProductList returns a page of products, optionally filtered by
// category or a search term.
func HandleProductList(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	productRepo := repository.GetGlobalFactory().GetProductRepository()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		products, err := productRepo.Search(query)
		if err != nil {
			return internalError(c, "could not search products")
		}
		return c.JSON(fiber.Map{"products": products})
	}

	var (
		products []models.Product
		err      error
	)
	if categoryID := c.QueryInt("category_id", 0); categoryID > 0 {
		products, err = productRepo.ListByCategory(uint(categoryID), offset, limit)
	} else {
		products, err = productRepo.List(offset, limit)
	}
	if err != nil {
		return internalError(c, "could not load products")
	}

	total, err := productRepo.Count()
	if err != nil {
		return internalError(c, "could not count products")
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
		"offset":   offset,
		"limit":    limit,
	})
}

// HandleProductGet returns one product by slug, including tiers, logo and
// the aggregated review rating.
func HandleProductGet(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return badRequest(c, "missing product slug")
	}

	factory := repository.GetGlobalFactory()
	product, err := factory.GetProductRepository().GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "product not found")
		}
		return internalError(c, "could not load product")
	}

	rating, err := factory.GetReviewRepository().AverageRating(product.ID)
	if err != nil {
		return internalError(c, "could not load product rating")
	}

	if err := counter.AddProductView(product.ID); err != nil {
		log.Debugf("view counter for product %d: %v", product.ID, err)
	}

	return c.JSON(fiber.Map{
		"product":        product,
		"average_rating": rating,
	})
}

// HandleProductCreate creates a product under a vendor the caller owns.
func HandleProductCreate(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	factory := repository.GetGlobalFactory()
	vendor, err := factory.GetVendorRepository().GetByID(req.VendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "vendor not found")
		}
		return internalError(c, "could not load vendor")
	}
	if vendor.OwnerID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return forbidden(c, "you do not own this vendor")
	}
	if _, err := factory.GetCategoryRepository().GetByID(req.CategoryID); err != nil {
		return badRequest(c, "unknown category")
	}

	product := &models.Product{
		VendorID:    req.VendorID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        strings.ToLower(req.Slug),
		Description: req.Description,
		URL:         req.URL,
	}
	if err := factory.GetProductRepository().Create(product); err != nil {
		return internalError(c, "could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": product})
}

// HandleProductUpdate edits a product the caller's vendor owns.
func HandleProductUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	factory := repository.GetGlobalFactory()
	product, err := loadOwnedProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Slug = strings.ToLower(req.Slug)
	product.Description = req.Description
	product.URL = req.URL
	if err := factory.GetProductRepository().Update(product); err != nil {
		return internalError(c, "could not update product")
	}

	return c.JSON(fiber.Map{"product": product})
}

// HandleProductDelete removes a product the caller's vendor owns.
func HandleProductDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	product, err := loadOwnedProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	if product.Logo != nil {
		logoprocessor.Remove(product.Logo)
	}
	if err := repository.GetGlobalFactory().GetProductRepository().Delete(product.ID); err != nil {
		return internalError(c, "could not delete product")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleTierCreate adds a priced tier to a product. The price arrives as a
// decimal string so no float rounding leaks into storage.
func HandleTierCreate(c *fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	var req tierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return badRequest(c, "price must be a non-negative decimal")
	}

	product, err := loadOwnedProduct(c, productID)
	if err != nil {
		return respondError(c, err)
	}

	tier := &models.Tier{
		ProductID: product.ID,
		Name:      req.Name,
		Price:     price,
		Period:    req.Period,
		Active:    true,
	}
	if err := repository.GetGlobalFactory().GetProductRepository().CreateTier(tier); err != nil {
		return internalError(c, "could not create tier")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tier": tier})
}

// HandleTierUpdate reprices or renames a tier. Existing subscriptions pick
// up the new terms on their next billing evaluation.
func HandleTierUpdate(c *fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}
	tierID, err := parseIDParam(c, "tierId")
	if err != nil {
		return badRequest(c, "invalid tier id")
	}

	var req tierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return badRequest(c, "price must be a non-negative decimal")
	}

	if _, err := loadOwnedProduct(c, productID); err != nil {
		return respondError(c, err)
	}

	productRepo := repository.GetGlobalFactory().GetProductRepository()
	tier, err := productRepo.GetTierByID(tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "tier not found")
		}
		return internalError(c, "could not load tier")
	}
	if tier.ProductID != productID {
		return notFound(c, "tier not found")
	}

	tier.Name = req.Name
	tier.Price = price
	tier.Period = req.Period
	if err := productRepo.UpdateTier(tier); err != nil {
		return internalError(c, "could not update tier")
	}

	return c.JSON(fiber.Map{"tier": tier})
}

// HandleTierDelete retires a tier.
func HandleTierDelete(c *fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}
	tierID, err := parseIDParam(c, "tierId")
	if err != nil {
		return badRequest(c, "invalid tier id")
	}

	if _, err := loadOwnedProduct(c, productID); err != nil {
		return respondError(c, err)
	}

	productRepo := repository.GetGlobalFactory().GetProductRepository()
	tier, err := productRepo.GetTierByID(tierID)
	if err != nil || tier.ProductID != productID {
		return notFound(c, "tier not found")
	}
	if err := productRepo.DeleteTier(tier.ID); err != nil {
		return internalError(c, "could not delete tier")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleProductLogoUpload accepts a multipart image, stores original plus
// resized variants and mirrors the original to S3 when configured.
func HandleProductLogoUpload(c *fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	product, err := loadOwnedProduct(c, productID)
	if err != nil {
		return respondError(c, err)
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return badRequest(c, "missing logo file")
	}
	if fileHeader.Size > logoprocessor.MaxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error":   "file_too_large",
			"message": "logo exceeds the maximum upload size",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return internalError(c, "could not read upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return internalError(c, "could not read upload")
	}

	logo, err := logoprocessor.Process(product.ID, fileHeader.Filename, data)
	if err != nil {
		return badRequest(c, err.Error())
	}
	productRepo := repository.GetGlobalFactory().GetProductRepository()

	// replacing an existing logo reuses its row and cleans up the old files
	if existing, err := productRepo.GetLogoByProductID(product.ID); err == nil {
		logo.ID = existing.ID
		logo.CreatedAt = existing.CreatedAt
		logoprocessor.Remove(existing)
	}

	if err := productRepo.SaveLogo(logo); err != nil {
		logoprocessor.Remove(logo)
		return internalError(c, "could not save logo")
	}

	// mirroring happens in the background; a full queue falls back to a
	// synchronous upload so the logo is never left unmirrored silently
	if err := jobqueue.EnqueueLogoMirror(logo.ID, product.ID); err != nil {
		log.Warnf("could not enqueue logo mirror for product %d: %v", product.ID, err)
		if merr := logoprocessor.Mirror(logo); merr != nil {
			log.Warnf("logo mirror for product %d failed: %v", product.ID, merr)
		} else if serr := productRepo.SaveLogo(logo); serr != nil {
			log.Warnf("could not persist mirror state for product %d: %v", product.ID, serr)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"logo": logo})
}

// loadOwnedProduct fetches a product and enforces vendor ownership.
// Failures come back as fiber sentinel errors for respondError, never as a
// rendered response, so callers can rely on the err != nil guard.
func loadOwnedProduct(c *fiber.Ctx, id uint) (*models.Product, error) {
	factory := repository.GetGlobalFactory()
	product, err := factory.GetProductRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load product")
	}

	vendor, err := factory.GetVendorRepository().GetByID(product.VendorID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load vendor")
	}
	if vendor.OwnerID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return nil, fiber.NewError(fiber.StatusForbidden, "you do not own this product")
	}
	return product, nil
}
