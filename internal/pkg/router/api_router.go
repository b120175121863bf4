package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/subtally/subtally/app/controllers"
	"github.com/subtally/subtally/internal/pkg/constants"
	"github.com/subtally/subtally/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "subtally api",
		})
	})

	v1 := api.Group("/v1")

	// public
	v1.Post("/auth/register", controllers.HandleUserRegister)
	v1.Post("/auth/login", controllers.HandleUserLogin)

	v1.Get("/categories", controllers.HandleCategoryList)
	v1.Get("/categories/:slug", controllers.HandleCategoryGet)
	v1.Get("/vendors", controllers.HandleVendorList)
	v1.Get("/vendors/:id", controllers.HandleVendorGet)
	v1.Get("/products", controllers.HandleProductList)
	v1.Get("/products/:slug", controllers.HandleProductGet)
	v1.Get("/products/:id/reviews", controllers.HandleReviewList)
	v1.Get("/reviews/:id/comments", controllers.HandleCommentList)

	// authenticated
	auth := v1.Group("", middleware.APIKeyAuthMiddleware())

	auth.Get("/me", controllers.HandleUserMe)
	auth.Post("/me/apikey", controllers.HandleAPIKeyRotate)

	auth.Post("/vendors", controllers.HandleVendorCreate)
	auth.Put("/vendors/:id", controllers.HandleVendorUpdate)
	auth.Delete("/vendors/:id", controllers.HandleVendorDelete)

	auth.Post("/products", middleware.RequireVendor(), controllers.HandleProductCreate)
	auth.Put("/products/:id", middleware.RequireVendor(), controllers.HandleProductUpdate)
	auth.Delete("/products/:id", middleware.RequireVendor(), controllers.HandleProductDelete)
	auth.Post("/products/:id/tiers", middleware.RequireVendor(), controllers.HandleTierCreate)
	auth.Put("/products/:id/tiers/:tierId", middleware.RequireVendor(), controllers.HandleTierUpdate)
	auth.Delete("/products/:id/tiers/:tierId", middleware.RequireVendor(), controllers.HandleTierDelete)
	auth.Post("/products/:id/logo", middleware.RequireVendor(), controllers.HandleProductLogoUpload)

	auth.Post("/products/:id/reviews", controllers.HandleReviewCreate)
	auth.Delete("/reviews/:id", controllers.HandleReviewDelete)
	auth.Post("/reviews/:id/comments", controllers.HandleCommentCreate)
	auth.Delete("/comments/:id", controllers.HandleCommentDelete)

	auth.Post("/subscriptions", controllers.HandleSubscribe)
	auth.Post("/subscriptions/track", controllers.HandleTrack)
	auth.Get("/subscriptions", controllers.HandleSubscriptionList)
	auth.Get("/subscriptions/:id", controllers.HandleSubscriptionGet)
	auth.Delete("/subscriptions/:id", controllers.HandleUnsubscribe)
	auth.Get("/dashboard", controllers.HandleDashboard)

	admin := auth.Group("/admin", middleware.RequireAdmin())
	admin.Get("/stats", controllers.HandleAdminStats)
	admin.Post("/categories", controllers.HandleCategoryCreate)
	admin.Put("/categories/:id", controllers.HandleCategoryUpdate)
	admin.Delete("/categories/:id", controllers.HandleCategoryDelete)
}
