package router

import (
	"fmt"
	"strings"

	"github.com/mallfront/internal/cache"
	"github.com/mallfront/internal/config"
	publichandlers "github.com/mallfront/internal/http/handlers/public"
	"github.com/mallfront/internal/logger"
	"github.com/mallfront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.KeyPrefix)
	if redisPrefix == "" {
		redisPrefix = "mf"
	}
	redisClient := cache.Client()
	chatSendRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:chat_send", redisPrefix),
		WindowSeconds: 60,
		MaxRequests:   cfg.Security.ChatSendPerMinute,
		MessageKey:    "error.chat_send_too_fast",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT))
		{
			// 购物车
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			user.PUT("/cart/items/:product_id/quantity", publicHandler.UpdateCartItemQuantity)
			user.POST("/cart/items/:product_id/select", publicHandler.ToggleCartItemSelect)
			user.POST("/cart/select-all", publicHandler.ToggleCartSelectAll)
			user.DELETE("/cart", publicHandler.ClearCart)

			// 结算
			user.GET("/checkout/state", publicHandler.GetCheckoutState)
			user.POST("/checkout/begin", publicHandler.BeginCheckout)
			user.POST("/checkout/cancel", publicHandler.CancelCheckout)
			user.POST("/checkout/confirm", publicHandler.ConfirmCheckout)

			// 会话助手
			user.GET("/chat/session", publicHandler.OpenChat)
			user.POST("/chat/messages", RateLimitMiddleware(redisClient, chatSendRule, KeyByUserID), publicHandler.SendChatMessage)
			user.GET("/chat/typing", publicHandler.GetChatTyping)
			user.POST("/chat/typing/cancel", publicHandler.CancelChatTyping)
			user.POST("/chat/session/new", publicHandler.NewChatSession)
			user.GET("/chat/history", publicHandler.ListChatHistory)
			user.DELETE("/chat/history/:conversation_id", publicHandler.DeleteChatHistory)

			// 订单回执与个人摘要
			user.GET("/orders/receipts", publicHandler.ListOrderReceipts)
			user.GET("/orders/receipts/:order_no", publicHandler.GetOrderReceipt)
			user.GET("/orders/receipts/:order_no/qrcode", publicHandler.GetPaymentQRCode)
			user.GET("/me/summary", publicHandler.GetProfileSummary)
		}
	}

	return r
}
