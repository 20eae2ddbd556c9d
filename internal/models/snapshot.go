package models

import "time"

// Snapshot 客户端状态快照（键值存储，值为 JSON）
type Snapshot struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Snapshot) TableName() string {
	return "snapshots"
}
