package public

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mallfront/internal/http/response"
)

const paymentQRSize = 256

// GetPaymentQRCode 将回执中的收银台地址渲染为二维码图片
func (h *Handler) GetPaymentQRCode(c *gin.Context) {
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
	if receipt == nil || strings.TrimSpace(receipt.PaymentURI) == "" {
		respondError(c, response.CodeNotFound, "error.receipt_not_found", nil)
		return
	}

	png, err := qrcode.Encode(receipt.PaymentURI, qrcode.Medium, paymentQRSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
