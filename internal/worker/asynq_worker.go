package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mallfront/internal/cache"
	"github.com/mallfront/internal/logger"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/provider"
	"github.com/mallfront/internal/queue"
	"github.com/mallfront/internal/service"
)

// 用户概要缓存有效期
const userSummaryTTL = 60 * time.Second

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPlacedNotify, c.handleOrderPlacedNotify)
	mux.HandleFunc(queue.TaskTranscriptArchive, c.handleTranscriptArchive)
}

// handleOrderPlacedNotify 订单提交成功后刷新用户概要缓存
func (c *Consumer) handleOrderPlacedNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_placed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPlacedNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_placed_unmarshal_failed", "error", err)
		return err
	}
	if payload.ReceiptID == 0 {
		logger.Debugw("worker_order_placed_skip_invalid_payload", "receipt_id", payload.ReceiptID)
		return nil
	}

	receipt, err := c.ReceiptRepo.GetByID(payload.ReceiptID)
	if err != nil {
		logger.Warnw("worker_order_placed_fetch_receipt_failed", "receipt_id", payload.ReceiptID, "error", err)
		return err
	}
	if receipt == nil {
		logger.Debugw("worker_order_placed_skip_receipt_not_found", "receipt_id", payload.ReceiptID)
		return nil
	}

	summary, err := c.ProfileClient.GetSummary(ctx, receipt.UserID)
	if err != nil {
		logger.Warnw("worker_order_placed_refresh_summary_failed",
			"receipt_id", receipt.ID,
			"user_id", receipt.UserID,
			"error", err,
		)
		return err
	}
	if err := cache.SetJSON(ctx, cache.UserSummaryKey(receipt.UserID), summary, userSummaryTTL); err != nil {
		logger.Warnw("worker_order_placed_cache_summary_failed", "user_id", receipt.UserID, "error", err)
	}

	logger.Infow("worker_order_placed_notified",
		"receipt_id", receipt.ID,
		"order_no", receipt.OrderNo,
		"user_id", receipt.UserID,
	)
	return nil
}

// handleTranscriptArchive 把历史会话落库归档
func (c *Consumer) handleTranscriptArchive(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_transcript_archive_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TranscriptArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_transcript_archive_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || payload.ConversationID == "" {
		logger.Debugw("worker_transcript_archive_skip_invalid_payload",
			"user_id", payload.UserID,
			"conversation_id", payload.ConversationID,
		)
		return nil
	}

	entry, err := c.ChatService.HistoryEntry(ctx, payload.UserID, payload.ConversationID)
	if err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			logger.Debugw("worker_transcript_archive_skip_not_found", "conversation_id", payload.ConversationID)
			return nil
		}
		logger.Warnw("worker_transcript_archive_load_failed", "conversation_id", payload.ConversationID, "error", err)
		return err
	}

	messagesJSON, err := json.Marshal(entry.Messages)
	if err != nil {
		logger.Warnw("worker_transcript_archive_marshal_failed", "conversation_id", payload.ConversationID, "error", err)
		return err
	}
	archive := &models.TranscriptArchive{
		UserID:         payload.UserID,
		ConversationID: entry.ConversationID,
		SessionID:      entry.SessionID,
		MessagesJSON:   string(messagesJSON),
		MessageCount:   len(entry.Messages),
		CreatedAt:      time.Now(),
	}
	if err := c.ArchiveRepo.Create(archive); err != nil {
		logger.Warnw("worker_transcript_archive_store_failed", "conversation_id", payload.ConversationID, "error", err)
		return err
	}
	logger.Infow("worker_transcript_archived",
		"user_id", payload.UserID,
		"conversation_id", entry.ConversationID,
		"message_count", archive.MessageCount,
	)
	return nil
}
