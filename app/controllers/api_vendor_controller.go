package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/usercontext"
)

type vendorRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Website     string `json:"website" validate:"omitempty,url,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// HandleVendorList returns a page of vendors.
func HandleVendorList(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	vendorRepo := repository.GetGlobalFactory().GetVendorRepository()
	vendors, err := vendorRepo.List(offset, limit)
	if err != nil {
		return internalError(c, "could not load vendors")
	}
	total, err := vendorRepo.Count()
	if err != nil {
		return internalError(c, "could not count vendors")
	}

	return c.JSON(fiber.Map{
		"vendors": vendors,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

// HandleVendorGet returns one vendor with its products.
func HandleVendorGet(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid vendor id")
	}

	factory := repository.GetGlobalFactory()
	vendor, err := factory.GetVendorRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "vendor not found")
		}
		return internalError(c, "could not load vendor")
	}

	products, err := factory.GetProductRepository().ListByVendor(vendor.ID)
	if err != nil {
		return internalError(c, "could not load vendor products")
	}

	return c.JSON(fiber.Map{
		"vendor":   vendor,
		"products": products,
	})
}

// HandleVendorCreate registers a vendor owned by the authenticated user and
// promotes the account to the vendor role if needed.
func HandleVendorCreate(c *fiber.Ctx) error {
	var req vendorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	factory := repository.GetGlobalFactory()
	userID := usercontext.GetUserID(c)

	vendor := &models.Vendor{
		OwnerID:     userID,
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
	}
	if err := factory.GetVendorRepository().Create(vendor); err != nil {
		return internalError(c, "could not create vendor")
	}

	userRepo := factory.GetUserRepository()
	if user, err := userRepo.GetByID(userID); err == nil && user.Role == models.ROLE_USER {
		user.Role = models.ROLE_VENDOR
		if err := userRepo.Update(user); err != nil {
			log.Warnf("could not promote user %d to vendor role: %v", userID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"vendor": vendor})
}

// HandleVendorUpdate edits a vendor. Only the owner or an admin may do this.
func HandleVendorUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid vendor id")
	}

	var req vendorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	vendorRepo := repository.GetGlobalFactory().GetVendorRepository()
	vendor, err := vendorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "vendor not found")
		}
		return internalError(c, "could not load vendor")
	}
	if vendor.OwnerID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return forbidden(c, "you do not own this vendor")
	}

	vendor.Name = req.Name
	vendor.Website = req.Website
	vendor.Description = req.Description
	if err := vendorRepo.Update(vendor); err != nil {
		return internalError(c, "could not update vendor")
	}

	return c.JSON(fiber.Map{"vendor": vendor})
}

// HandleVendorDelete removes a vendor. Only the owner or an admin may do this.
func HandleVendorDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid vendor id")
	}

	vendorRepo := repository.GetGlobalFactory().GetVendorRepository()
	vendor, err := vendorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "vendor not found")
		}
		return internalError(c, "could not load vendor")
	}
	if vendor.OwnerID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return forbidden(c, "you do not own this vendor")
	}

	if err := vendorRepo.Delete(vendor.ID); err != nil {
		return internalError(c, "could not delete vendor")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
