package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/mallfront/internal/constants"
)

const (
	// TaskOrderPlacedNotify 订单提交成功通知任务
	TaskOrderPlacedNotify = constants.TaskOrderPlacedNotify
	// TaskTranscriptArchive 会话转写归档任务
	TaskTranscriptArchive = constants.TaskTranscriptArchive
)

// OrderPlacedNotifyPayload 订单提交成功通知任务载荷
type OrderPlacedNotifyPayload struct {
	ReceiptID uint `json:"receipt_id"`
}

// TranscriptArchivePayload 会话归档任务载荷
type TranscriptArchivePayload struct {
	UserID         uint   `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

// NewOrderPlacedNotifyTask 创建订单提交成功通知任务
func NewOrderPlacedNotifyTask(payload OrderPlacedNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPlacedNotify, body), nil
}

// NewTranscriptArchiveTask 创建会话归档任务
func NewTranscriptArchiveTask(payload TranscriptArchivePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTranscriptArchive, body), nil
}
