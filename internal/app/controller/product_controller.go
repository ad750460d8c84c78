package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/internal/errors"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts returns a catalog page
// GET /api/v1/products?page=&page_size=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := ctrl.productService.ListProducts(page, pageSize)
	if err != nil {
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
	})
}

// GetProduct returns a single product with its size matrix
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid product id")
		return
	}

	product, err := ctrl.productService.GetProduct(uint(id))
	if err != nil {
		if err == service.ErrProductNotFound {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}
