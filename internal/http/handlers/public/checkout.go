package public

import (
	"github.com/gin-gonic/gin"

	"github.com/mallfront/internal/http/response"
)

// GetCheckoutState 获取当前结算状态
func (h *Handler) GetCheckoutState(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{"state": h.CheckoutService.State(uid)})
}

// BeginCheckout 发起结算，进入待确认状态
func (h *Handler) BeginCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CheckoutService.Begin(c.Request.Context(), uid); err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, gin.H{"state": h.CheckoutService.State(uid)})
}

// CancelCheckout 取消结算
func (h *Handler) CancelCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CheckoutService.Cancel(uid); err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, gin.H{"state": h.CheckoutService.State(uid)})
}

// ConfirmCheckout 确认结算并提交订单
func (h *Handler) ConfirmCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.CheckoutService.Confirm(c.Request.Context(), uid)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}
