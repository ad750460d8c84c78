package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/events"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type CartController struct {
	sessions       *service.CartSessionManager
	productService service.ProductService
	publisher      events.Publisher
}

func NewCartController(sessions *service.CartSessionManager, productService service.ProductService, publisher events.Publisher) *CartController {
	return &CartController{
		sessions:       sessions,
		productService: productService,
		publisher:      publisher,
	}
}

type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"` // zero removes the item
}

type BatchRemoveRequest struct {
	Items []model.LineItemKey `json:"items" binding:"required"`
}

// cartLine enriches a line item with the derived values the UI renders.
type cartLine struct {
	model.LineItem
	LineSubtotal float64 `json:"line_subtotal"`
	EffectiveMax *int    `json:"effective_max,omitempty"` // nil when unbounded
}

func cartPayload(session *service.CartSession) gin.H {
	items := session.Items()
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		line := cartLine{
			LineItem:     item,
			LineSubtotal: item.Price * float64(item.Quantity),
		}
		if max := service.EffectiveMax(item.ProductSnapshot, item.Size); !max.Unbounded {
			m := max.Max
			line.EffectiveMax = &m
		}
		lines = append(lines, line)
	}
	return gin.H{
		"items": lines,
		"count": session.Count(),
		"total": session.Subtotal(),
	}
}

// GetCart returns the active identity's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	c.JSON(http.StatusOK, cartPayload(session))
}

// AddItem reconciles a product into the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	snapshot, err := ctrl.productService.GetSnapshot(req.ProductID)
	if err != nil {
		if err == service.ErrProductNotFound {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		errors.InternalError(c, "")
		return
	}

	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	result := session.Add(snapshot, req.Size, req.Quantity)

	if result.Status == service.ChangeRejected {
		log.Info("Add to cart rejected", map[string]interface{}{
			"product_id": req.ProductID,
			"size":       req.Size,
			"reason":     result.Reason,
		})
		errors.Conflict(c, errors.CartItemUnavailable, "This item is currently unavailable")
		return
	}

	if result.Changed() {
		ctrl.publisher.CartChanged(events.CartEvent{
			Action:    string(result.Status),
			Partition: session.Partition(),
			ProductID: req.ProductID,
			Size:      model.NormalizeVariant(req.Size),
			Quantity:  result.Quantity,
			CartCount: session.Count(),
		})
	}

	payload := cartPayload(session)
	payload["result"] = result
	c.JSON(http.StatusOK, payload)
}

// UpdateItem sets a line item's quantity; zero removes it
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	result := session.UpdateQuantity(req.ProductID, req.Size, req.Quantity)

	if result.Changed() {
		ctrl.publisher.CartChanged(events.CartEvent{
			Action:    string(result.Status),
			Partition: session.Partition(),
			ProductID: req.ProductID,
			Size:      model.NormalizeVariant(req.Size),
			Quantity:  result.Quantity,
			CartCount: session.Count(),
		})
	}

	payload := cartPayload(session)
	payload["result"] = result
	c.JSON(http.StatusOK, payload)
}

// RemoveItem deletes one line item
// DELETE /api/v1/cart/items?product_id=&size=
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if err != nil || productID == 0 {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid product id")
		return
	}
	size := c.Query("size")

	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	result := session.Remove(uint(productID), size)

	if result.Changed() {
		ctrl.publisher.CartChanged(events.CartEvent{
			Action:    string(result.Status),
			Partition: session.Partition(),
			ProductID: uint(productID),
			Size:      model.NormalizeVariant(size),
			CartCount: session.Count(),
		})
	}

	payload := cartPayload(session)
	payload["result"] = result
	c.JSON(http.StatusOK, payload)
}

// BatchRemove prunes purchased items after order placement
// POST /api/v1/cart/items/batch-remove
func (ctrl *CartController) BatchRemove(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	var req BatchRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid batch remove request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	removed := session.RemoveMany(req.Items)

	if removed > 0 {
		ctrl.publisher.CartChanged(events.CartEvent{
			Action:    "pruned",
			Partition: session.Partition(),
			Quantity:  removed,
			CartCount: session.Count(),
		})
	}

	payload := cartPayload(session)
	payload["removed"] = removed
	c.JSON(http.StatusOK, payload)
}

// ClearCart empties the cart and its persisted partition
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	session := ctrl.sessions.Resolve(c.Request.Context(), identity)
	result := session.Clear()

	ctrl.publisher.CartChanged(events.CartEvent{
		Action:    string(result.Status),
		Partition: session.Partition(),
		CartCount: 0,
	})

	c.JSON(http.StatusOK, gin.H{
		"items": []cartLine{},
		"count": 0,
		"total": 0.0,
	})
}
