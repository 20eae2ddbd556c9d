package service

import "errors"

// 服务层错误定义
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrQuantityInvalid    = errors.New("quantity must be greater than zero")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrNoSelectedItems    = errors.New("no selected cart items")
	ErrCheckoutState      = errors.New("operation not allowed in current checkout state")
	ErrOrderSubmitFailed  = errors.New("order submission failed")
	ErrSendInFlight       = errors.New("another send is in flight")
	ErrSessionUnavailable = errors.New("chat session unavailable")
	ErrHistoryNotFound    = errors.New("conversation history not found")
	ErrMessageEmpty       = errors.New("message text is empty")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
)

// OrderSubmitError 订单中心受理失败；Message 为上游返回的拒绝原因，
// 用于直接展示给用户
type OrderSubmitError struct {
	Message string
}

func (e *OrderSubmitError) Error() string {
	if e.Message == "" {
		return ErrOrderSubmitFailed.Error()
	}
	return ErrOrderSubmitFailed.Error() + ": " + e.Message
}

func (e *OrderSubmitError) Unwrap() error {
	return ErrOrderSubmitFailed
}
