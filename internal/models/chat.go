package models

import "time"

// ChatMessage 会话消息
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	IsMarkup  bool      `json:"is_markup"`
	Flag      string    `json:"flag,omitempty"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	Delivery  string    `json:"delivery,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSessionSnapshot 单个用户的当前会话快照
type ChatSessionSnapshot struct {
	SessionID      string        `json:"session_id"`
	ConversationID string        `json:"conversation_id"`
	Messages       []ChatMessage `json:"messages"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ChatHistoryEntry 历史会话条目
type ChatHistoryEntry struct {
	ConversationID string        `json:"conversation_id"`
	SessionID      string        `json:"session_id"`
	Preview        string        `json:"preview"`
	Messages       []ChatMessage `json:"messages"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ChatHistorySnapshot 单个用户的历史会话快照（按更新时间从新到旧）
type ChatHistorySnapshot struct {
	Entries   []ChatHistoryEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}
