package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type CheckoutController struct {
	sessions       *service.CartSessionManager
	productService service.ProductService
	checkoutCfg    config.CheckoutConfig
}

func NewCheckoutController(sessions *service.CartSessionManager, productService service.ProductService, checkoutCfg config.CheckoutConfig) *CheckoutController {
	return &CheckoutController{
		sessions:       sessions,
		productService: productService,
		checkoutCfg:    checkoutCfg,
	}
}

// BuyNowSelection is the single-item checkout path from a product page; it
// never touches the cart.
type BuyNowSelection struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type TotalsRequest struct {
	// Items selects a subset of the cart by key; empty means the whole cart.
	Items []model.LineItemKey `json:"items"`
	// BuyNow computes totals for one ad-hoc item instead of the cart.
	BuyNow *BuyNowSelection `json:"buy_now"`

	// Fee overrides; defaults come from server configuration.
	ShippingFee *float64 `json:"shipping_fee"`
	TaxAmount   *float64 `json:"tax_amount"`
	Discount    *float64 `json:"discount"`
}

// Totals derives the monetary breakdown handed to the checkout flow
// POST /api/v1/checkout/totals
func (ctrl *CheckoutController) Totals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid totals request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	items, ok := ctrl.selectItems(c, identity, req)
	if !ok {
		return
	}
	if len(items) == 0 {
		errors.BadRequest(c, errors.CheckoutEmptySelection, "Nothing selected for checkout")
		return
	}

	// Quantity entry tolerates an unchosen size, purchase does not.
	for _, item := range items {
		if item.ShowSizes && item.Size == "" {
			errors.BadRequest(c, errors.CheckoutVariantRequired, "Please choose a size for "+item.Name)
			return
		}
	}

	breakdown := service.CalculateTotals(items, ctrl.feeConfig(items, req))

	log.Info("Checkout totals computed", map[string]interface{}{
		"items":    len(breakdown.Items),
		"subtotal": breakdown.Subtotal,
		"total":    breakdown.Total,
	})
	c.JSON(http.StatusOK, breakdown)
}

// selectItems resolves the item list the breakdown is computed over. Returns
// ok=false after writing an error response.
func (ctrl *CheckoutController) selectItems(c *gin.Context, identity model.Identity, req TotalsRequest) ([]model.LineItem, bool) {
	if req.BuyNow != nil {
		item, ok := ctrl.buyNowItem(c, *req.BuyNow)
		if !ok {
			return nil, false
		}
		return []model.LineItem{item}, true
	}

	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	all := session.Items()
	if len(req.Items) == 0 {
		return all, true
	}

	selected := make([]model.LineItem, 0, len(req.Items))
	for _, item := range all {
		for _, key := range req.Items {
			if key.Matches(item) {
				selected = append(selected, item)
				break
			}
		}
	}
	return selected, true
}

func (ctrl *CheckoutController) buyNowItem(c *gin.Context, sel BuyNowSelection) (model.LineItem, bool) {
	snapshot, err := ctrl.productService.GetSnapshot(sel.ProductID)
	if err != nil {
		if err == service.ErrProductNotFound {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
		} else {
			errors.InternalError(c, "")
		}
		return model.LineItem{}, false
	}

	quantity := sel.Quantity
	if quantity < 1 {
		quantity = 1
	}
	max := service.EffectiveMax(snapshot, sel.Size)
	if !max.Unbounded {
		if max.Max <= 0 {
			errors.Conflict(c, errors.CartItemUnavailable, "This item is currently unavailable")
			return model.LineItem{}, false
		}
		if quantity > max.Max {
			quantity = max.Max
		}
	}

	return model.LineItem{
		ProductSnapshot: snapshot,
		Quantity:        quantity,
		Size:            model.NormalizeVariant(sel.Size),
	}, true
}

// feeConfig resolves fee defaults from server configuration, applying the
// free-shipping threshold and any request-level overrides.
func (ctrl *CheckoutController) feeConfig(items []model.LineItem, req TotalsRequest) model.FeeConfig {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	cfg := model.FeeConfig{ShippingFee: ctrl.checkoutCfg.ShippingFee}
	if threshold := ctrl.checkoutCfg.FreeShippingThreshold; threshold > 0 && subtotal >= threshold {
		cfg.ShippingFee = 0
	}
	if req.ShippingFee != nil {
		cfg.ShippingFee = *req.ShippingFee
	}
	if req.TaxAmount != nil {
		cfg.TaxAmount = *req.TaxAmount
	}
	if req.Discount != nil {
		cfg.Discount = *req.Discount
	}
	return cfg
}
