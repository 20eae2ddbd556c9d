package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleZHCN = "zh-CN"
	LocaleENUS = "en-US"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleZHCN

var messages = map[string]map[string]string{
	LocaleZHCN: {
		"error.internal":                "服务器内部错误",
		"error.invalid_params":          "请求参数不合法",
		"error.unauthorized":            "请先登录",
		"error.user_id_invalid":         "用户标识不合法",
		"error.user_id_type_invalid":    "用户标识类型错误",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后重试",
		"error.chat_send_too_fast":      "消息发送太快了，请 %d 秒后再试",
		"error.rate_limit_unavailable":  "限流服务暂不可用",
		"error.jwt_secret_missing":      "服务端未配置用户令牌密钥",
		"error.auth_header_missing":     "缺少认证信息",
		"error.auth_header_invalid":     "认证信息格式错误",
		"error.token_invalid":           "登录凭证无效",
		"error.token_expired":           "登录凭证已过期",
		"error.quantity_invalid":        "商品数量必须大于 0",
		"error.cart_item_not_found":     "购物车中不存在该商品",
		"error.no_selected_items":       "请先勾选要结算的商品",
		"error.checkout_state":          "当前结算状态不允许该操作",
		"error.order_submit_failed":     "订单提交失败，请稍后重试",
		"error.upstream_unavailable":    "上游服务暂不可用",
		"error.session_not_found":       "会话不存在或已过期",
		"error.history_not_found":       "历史会话不存在",
		"error.message_empty":           "消息内容不能为空",
		"error.send_in_flight":          "上一条消息还在发送中",
		"error.receipt_not_found":       "订单回执不存在",
		"chat.welcome":                  "你好 %s，我是商城助手，有什么可以帮你？",
		"chat.welcome_guest":            "你好，我是商城助手，有什么可以帮你？",
		"chat.send_failed":              "消息发送失败，请稍后重试",
	},
	LocaleENUS: {
		"error.internal":                "internal server error",
		"error.invalid_params":          "invalid request parameters",
		"error.unauthorized":            "please sign in first",
		"error.user_id_invalid":         "invalid user id",
		"error.user_id_type_invalid":    "invalid user id type",
		"error.rate_limited":            "too many requests, please retry in %d seconds",
		"error.chat_send_too_fast":      "sending messages too fast, please retry in %d seconds",
		"error.rate_limit_unavailable":  "rate limiter unavailable",
		"error.jwt_secret_missing":      "user token secret is not configured",
		"error.auth_header_missing":     "missing authorization header",
		"error.auth_header_invalid":     "invalid authorization header",
		"error.token_invalid":           "invalid login token",
		"error.token_expired":           "login token expired",
		"error.quantity_invalid":        "item quantity must be greater than 0",
		"error.cart_item_not_found":     "item not found in cart",
		"error.no_selected_items":       "please select items to check out",
		"error.checkout_state":          "operation not allowed in current checkout state",
		"error.order_submit_failed":     "order submission failed, please retry later",
		"error.upstream_unavailable":    "upstream service unavailable",
		"error.session_not_found":       "session not found or expired",
		"error.history_not_found":       "conversation not found",
		"error.message_empty":           "message text must not be empty",
		"error.send_in_flight":          "previous message is still sending",
		"error.receipt_not_found":       "order receipt not found",
		"chat.welcome":                  "Hi %s, I am the mall assistant. How can I help you?",
		"chat.welcome_guest":            "Hi, I am the mall assistant. How can I help you?",
		"chat.send_failed":              "message failed to send, please retry later",
	},
}

// ResolveLocale 解析请求语言，优先 query 参数，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := Normalize(c.Query("lang")); locale != "" {
		return locale
	}
	if locale := Normalize(c.GetHeader("Accept-Language")); locale != "" {
		return locale
	}
	return DefaultLocale
}

// Normalize 归一化语言标识，未识别时返回空串
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if idx := strings.IndexAny(raw, ",;"); idx >= 0 {
		raw = raw[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "zh", "zh-cn", "zh-hans":
		return LocaleZHCN
	case "en", "en-us":
		return LocaleENUS
	}
	return ""
}

// T 按语言取文案，缺失时回退默认语言，再缺失时返回 key
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if text, ok := table[key]; ok {
			return text
		}
	}
	if locale != DefaultLocale {
		if text, ok := messages[DefaultLocale][key]; ok {
			return text
		}
	}
	return key
}

// Sprintf 取文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
