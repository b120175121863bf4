package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Slug string `json:"slug" validate:"required,max=120"`
}

// HandleCategoryList returns all categories.
func HandleCategoryList(c *fiber.Ctx) error {
	categories, err := repository.GetGlobalFactory().GetCategoryRepository().List()
	if err != nil {
		return internalError(c, "could not load categories")
	}

	return c.JSON(fiber.Map{"categories": categories})
}

// HandleCategoryGet returns one category by slug.
func HandleCategoryGet(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return badRequest(c, "missing category slug")
	}

	category, err := repository.GetGlobalFactory().GetCategoryRepository().GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "category not found")
		}
		return internalError(c, "could not load category")
	}

	return c.JSON(fiber.Map{"category": category})
}

// HandleCategoryCreate creates a category. Admin only, enforced by the router.
func HandleCategoryCreate(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	category := &models.Category{
		Name: req.Name,
		Slug: strings.ToLower(req.Slug),
	}
	if err := repository.GetGlobalFactory().GetCategoryRepository().Create(category); err != nil {
		return internalError(c, "could not create category")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"category": category})
}

// HandleCategoryUpdate renames a category.
func HandleCategoryUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	categoryRepo := repository.GetGlobalFactory().GetCategoryRepository()
	category, err := categoryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "category not found")
		}
		return internalError(c, "could not load category")
	}

	category.Name = req.Name
	category.Slug = strings.ToLower(req.Slug)
	if err := categoryRepo.Update(category); err != nil {
		return internalError(c, "could not update category")
	}

	return c.JSON(fiber.Map{"category": category})
}

// HandleCategoryDelete removes a category.
func HandleCategoryDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	if err := repository.GetGlobalFactory().GetCategoryRepository().Delete(id); err != nil {
		return internalError(c, "could not delete category")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
