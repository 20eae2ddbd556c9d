package public

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mallfront/internal/client"
	handlershared "github.com/mallfront/internal/http/handlers/shared"
	"github.com/mallfront/internal/http/response"
	"github.com/mallfront/internal/service"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.invalid_params"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, key: "error.quantity_invalid"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
}

// 传输层失败要先于 ErrOrderSubmitFailed 匹配：提交失败会同时包装两者
var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.invalid_params"},
	{target: service.ErrNoSelectedItems, code: response.CodeBadRequest, key: "error.no_selected_items"},
	{target: service.ErrCheckoutState, code: response.CodeConflict, key: "error.checkout_state"},
	{target: client.ErrRequestFailed, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
	{target: client.ErrResponseInvalid, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
	{target: service.ErrOrderSubmitFailed, code: response.CodeBadRequest, key: "error.order_submit_failed"},
}

var chatErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.invalid_params"},
	{target: service.ErrMessageEmpty, code: response.CodeBadRequest, key: "error.message_empty"},
	{target: service.ErrSendInFlight, code: response.CodeConflict, key: "error.send_in_flight"},
	{target: service.ErrSessionUnavailable, code: response.CodeBadRequest, key: "error.session_not_found"},
	{target: service.ErrHistoryNotFound, code: response.CodeNotFound, key: "error.history_not_found"},
	{target: client.ErrRequestFailed, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
	{target: client.ErrRejected, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
}

var upstreamErrorRules = []mappedHandlerError{
	{target: client.ErrRequestFailed, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
	{target: client.ErrRejected, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
	{target: client.ErrResponseInvalid, code: response.CodeBadGateway, key: "error.upstream_unavailable"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal")
}

func respondCheckoutError(c *gin.Context, err error) {
	// 订单中心给出拒绝原因时原样透出，而不是固定文案
	var submitErr *service.OrderSubmitError
	if errors.As(err, &submitErr) && strings.TrimSpace(submitErr.Message) != "" {
		handlershared.RequestLog(c).Warnw("order_submit_rejected", "message", submitErr.Message)
		response.Error(c, response.CodeBadRequest, submitErr.Message)
		return
	}
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.internal")
}

func respondChatError(c *gin.Context, err error) {
	respondWithMappedError(c, err, chatErrorRules, response.CodeInternal, "error.internal")
}

func respondUpstreamError(c *gin.Context, err error) {
	respondWithMappedError(c, err, upstreamErrorRules, response.CodeInternal, "error.internal")
}
