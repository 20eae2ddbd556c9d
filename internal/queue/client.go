package queue

import (
	"context"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mallfront/internal/config"
	"github.com/mallfront/internal/constants"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列名称
	CriticalQueue = constants.QueueCritical
)

// Client 队列客户端封装；Redis 未配置时全部入队操作为空操作
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
	maxRetry     int
}

// NewClient 创建队列客户端
func NewClient(redisCfg config.RedisConfig, queueCfg config.QueueConfig) (*Client, error) {
	if strings.TrimSpace(redisCfg.Addr) == "" {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	maxRetry := queueCfg.DefaultMaxRetry
	if maxRetry < 0 {
		maxRetry = 0
	}
	client := asynq.NewClient(buildRedisOpt(redisCfg))
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
		maxRetry:     maxRetry,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderPlacedNotify 推送订单提交成功通知任务
func (c *Client) EnqueueOrderPlacedNotify(ctx context.Context, receiptID uint) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderPlacedNotifyTask(OrderPlacedNotifyPayload{ReceiptID: receiptID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(c.maxRetry),
	)
	return err
}

// EnqueueTranscriptArchive 推送会话归档任务
func (c *Client) EnqueueTranscriptArchive(ctx context.Context, userID uint, conversationID string) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewTranscriptArchiveTask(TranscriptArchivePayload{
		UserID:         userID,
		ConversationID: conversationID,
	})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.defaultQueue),
		asynq.MaxRetry(c.maxRetry),
	)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(redisCfg config.RedisConfig, queueCfg config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := queueCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	serverCfg := asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			CriticalQueue: 6,
			DefaultQueue:  3,
		},
	}
	if queueCfg.ShutdownTimeoutMS > 0 {
		serverCfg.ShutdownTimeout = time.Duration(queueCfg.ShutdownTimeoutMS) * time.Millisecond
	}
	return buildRedisOpt(redisCfg), serverCfg
}

func buildRedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
