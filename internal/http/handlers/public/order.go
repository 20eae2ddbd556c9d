package public

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mallfront/internal/cache"
	handlershared "github.com/mallfront/internal/http/handlers/shared"
	"github.com/mallfront/internal/http/response"
	"github.com/mallfront/internal/models"
)

const profileSummaryCacheTTL = 60 * time.Second

// OrderReceiptView 订单回执响应
type OrderReceiptView struct {
	OrderNo     string             `json:"order_no"`
	Currency    string             `json:"currency"`
	TotalAmount models.Money       `json:"total_amount"`
	Items       []models.OrderItem `json:"items"`
	PaymentURI  string             `json:"payment_uri,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func buildReceiptView(receipt *models.OrderReceipt) OrderReceiptView {
	var items []models.OrderItem
	if receipt.ItemsJSON != "" {
		if err := json.Unmarshal([]byte(receipt.ItemsJSON), &items); err != nil {
			items = nil
		}
	}
	return OrderReceiptView{
		OrderNo:     receipt.OrderNo,
		Currency:    receipt.Currency,
		TotalAmount: receipt.TotalAmount,
		Items:       items,
		PaymentURI:  receipt.PaymentURI,
		CreatedAt:   receipt.CreatedAt,
	}
}

// ListOrderReceipts 分页获取订单回执
func (h *Handler) ListOrderReceipts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	receipts, total, err := h.ReceiptRepo.ListByUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	views := make([]OrderReceiptView, 0, len(receipts))
	for i := range receipts {
		views = append(views, buildReceiptView(&receipts[i]))
	}
	response.SuccessWithPage(c, gin.H{"receipts": views}, response.NewPagination(page, pageSize, total))
}

// GetOrderReceipt 按订单号获取回执
func (h *Handler) GetOrderReceipt(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.invalid_params", nil)
		return
	}
	receipt, err := h.ReceiptRepo.GetByOrderNo(uid, orderNo)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if receipt == nil {
		respondError(c, response.CodeNotFound, "error.receipt_not_found", nil)
		return
	}
	response.Success(c, buildReceiptView(receipt))
}

// GetProfileSummary 获取用户概要，带短时缓存
func (h *Handler) GetProfileSummary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var cached map[string]interface{}
	if hit, err := cache.GetJSON(ctx, cache.UserSummaryKey(uid), &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	summary, err := h.ProfileClient.GetSummary(ctx, uid)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	if err := cache.SetJSON(ctx, cache.UserSummaryKey(uid), summary, profileSummaryCacheTTL); err != nil {
		handlershared.RequestLog(c).Warnw("cache_profile_summary_failed", "user_id", uid, "error", err)
	}
	response.Success(c, summary)
}
