package constants

// 结算状态机常量
const (
	CheckoutStateIdle                = "idle"
	CheckoutStateConfirmationPending = "confirmation_pending"
	CheckoutStateSubmitting          = "submitting"
)

// OrderSubmitSuccessMessage 订单服务成功响应的 message 哨兵值
const OrderSubmitSuccessMessage = "success"

// 会话消息发送方常量
const (
	ChatSenderUser = "user"
	ChatSenderBot  = "bot"
)

// 预置快捷问题标记常量
const (
	ChatFlagNone        = ""
	ChatFlagBestSelling = "BEST_SELLING"
	ChatFlagTopRated    = "TOP_RATED"
)

// 消息投递状态常量
const (
	ChatDeliveryPending   = "pending"
	ChatDeliveryConfirmed = "confirmed"
	ChatDeliveryFailed    = "failed"
)

// 本地快照存储 key 前缀
const (
	SnapshotKeyCart        = "cart"
	SnapshotKeyChatSession = "chat:session"
	SnapshotKeyChatHistory = "chat:history"
)

// ChatHistoryLimit 聊天历史缓存容量上限
const ChatHistoryLimit = 10

// SiteCurrencyDefault 站点货币默认值
const SiteCurrencyDefault = "CNY"

// 异步任务类型常量
const (
	TaskOrderPlacedNotify = "order:placed_notify"
	TaskTranscriptArchive = "chat:transcript_archive"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// UserSummaryCachePrefix 用户概要缓存 key 前缀
const UserSummaryCachePrefix = "user:summary"
