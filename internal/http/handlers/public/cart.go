package public

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mallfront/internal/http/response"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/service"
)

// AddCartItemRequest 添加购物车条目请求
type AddCartItemRequest struct {
	ProductID string       `json:"product_id" binding:"required"`
	Name      string       `json:"name"`
	UnitPrice models.Money `json:"unit_price"`
	Quantity  int64        `json:"quantity"`
	Image     string       `json:"image"`
}

// UpdateQuantityRequest 修改数量请求
type UpdateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.Get(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 添加条目，同商品合并数量
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.invalid_params", err)
		return
	}
	view, err := h.CartService.AddItem(c.Request.Context(), uid, service.AddCartItemInput{
		ProductID: strings.TrimSpace(req.ProductID),
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		Image:     strings.TrimSpace(req.Image),
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteCartItem 删除条目，商品不存在时同样返回成功
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID := strings.TrimSpace(c.Param("product_id"))
	view, err := h.CartService.RemoveItem(c.Request.Context(), uid, productID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItemQuantity 修改条目数量；数量减到 0 视为删除
func (h *Handler) UpdateCartItemQuantity(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID := strings.TrimSpace(c.Param("product_id"))
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.invalid_params", err)
		return
	}

	ctx := c.Request.Context()
	if req.Quantity == 0 {
		view, err := h.CartService.RemoveItem(ctx, uid, productID)
		if err != nil {
			respondCartError(c, err)
			return
		}
		response.Success(c, view)
		return
	}

	view, err := h.CartService.UpdateQuantity(ctx, uid, productID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ToggleCartItemSelect 翻转条目勾选状态
func (h *Handler) ToggleCartItemSelect(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID := strings.TrimSpace(c.Param("product_id"))
	view, err := h.CartService.ToggleSelect(c.Request.Context(), uid, productID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ToggleCartSelectAll 全选或取消全选
func (h *Handler) ToggleCartSelectAll(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.ToggleSelectAll(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), uid); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
