package router

import (
	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/internal/app/controller"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type Router struct {
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	identityMiddleware *middleware.IdentityMiddleware
	config             *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	identityMiddleware *middleware.IdentityMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:  productController,
		cartController:     cartController,
		checkoutController: checkoutController,
		identityMiddleware: identityMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "VASTRAKART API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		cart := v1.Group("/cart", r.identityMiddleware.Resolve())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items", r.cartController.UpdateItem)
			cart.DELETE("/items", r.cartController.RemoveItem)
			cart.POST("/items/batch-remove", r.cartController.BatchRemove)
		}

		checkout := v1.Group("/checkout", r.identityMiddleware.Resolve())
		{
			checkout.POST("/totals", r.checkoutController.Totals)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Guest-Token, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
