package models

import "time"

// TranscriptArchive 会话转写归档（由后台任务落库）
type TranscriptArchive struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	ConversationID string    `gorm:"index;size:64" json:"conversation_id"`
	SessionID      string    `gorm:"size:64" json:"session_id"`
	MessagesJSON   string    `gorm:"type:text" json:"-"`
	MessageCount   int       `json:"message_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名
func (TranscriptArchive) TableName() string {
	return "transcript_archives"
}
