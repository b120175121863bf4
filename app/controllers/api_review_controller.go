package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/usercontext"
)

type reviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Body   string `json:"body" validate:"max=5000"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// HandleReviewList returns a page of reviews for a product.
func HandleReviewList(c *fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}
	offset, limit := parsePagination(c)

	reviewRepo := repository.GetGlobalFactory().GetReviewRepository()
	reviews, err := reviewRepo.GetByProductID(productID, offset, limit)
	if err != nil {
		return internalError(c, "could not load reviews")
	}
	rating, err := reviewRepo.AverageRating(productID)
	if err != nil {
		return internalError(c, "could not load product rating")
	}

	return c.JSON(fiber.Map{
		"reviews":        reviews,
		"average_rating": rating,
	})
}

// HandleReviewCreate posts a review on a product.
func HandleReviewCreate(c *fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	factory := repository.GetGlobalFactory()
	if _, err := factory.GetProductRepository().GetByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "product not found")
		}
		return internalError(c, "could not load product")
	}

	review := &models.Review{
		UserID:    usercontext.GetUserID(c),
		ProductID: productID,
		Rating:    req.Rating,
		Body:      req.Body,
	}
	if err := factory.GetReviewRepository().Create(review); err != nil {
		return internalError(c, "could not create review")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

// HandleReviewDelete removes a review. Authors and admins only.
func HandleReviewDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	reviewRepo := repository.GetGlobalFactory().GetReviewRepository()
	review, err := reviewRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "review not found")
		}
		return internalError(c, "could not load review")
	}
	if review.UserID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return forbidden(c, "you did not write this review")
	}

	if err := reviewRepo.Delete(review.ID); err != nil {
		return internalError(c, "could not delete review")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCommentList returns all comments under a review.
func HandleCommentList(c *fiber.Ctx) error {
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	comments, err := repository.GetGlobalFactory().GetReviewRepository().GetCommentsByReviewID(reviewID)
	if err != nil {
		return internalError(c, "could not load comments")
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// HandleCommentCreate replies to a review.
func HandleCommentCreate(c *fiber.Ctx) error {
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	reviewRepo := repository.GetGlobalFactory().GetReviewRepository()
	if _, err := reviewRepo.GetByID(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "review not found")
		}
		return internalError(c, "could not load review")
	}

	comment := &models.Comment{
		UserID:   usercontext.GetUserID(c),
		ReviewID: reviewID,
		Content:  req.Content,
	}
	if err := reviewRepo.CreateComment(comment); err != nil {
		return internalError(c, "could not create comment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// HandleCommentDelete removes a comment. Authors and admins only.
func HandleCommentDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid comment id")
	}

	reviewRepo := repository.GetGlobalFactory().GetReviewRepository()
	comment, err := reviewRepo.GetCommentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "comment not found")
		}
		return internalError(c, "could not load comment")
	}
	if comment.UserID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return forbidden(c, "you did not write this comment")
	}

	if err := reviewRepo.DeleteComment(comment.ID); err != nil {
		return internalError(c, "could not delete comment")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
