package service

import (
	"strings"
	"time"

	"github.com/mallfront/internal/models"
)

// upsertHistoryEntry 将会话写入历史列表头部。已存在的会话更新后移到
// 最前；超出容量时淘汰最旧的条目。
func upsertHistoryEntry(snapshot *models.ChatHistorySnapshot, entry models.ChatHistoryEntry, limit int) {
	if limit < 1 {
		limit = 1
	}
	entry.UpdatedAt = time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}
	if entry.Preview == "" {
		entry.Preview = historyPreview(entry.Messages)
	}

	kept := make([]models.ChatHistoryEntry, 0, len(snapshot.Entries)+1)
	kept = append(kept, entry)
	for _, existing := range snapshot.Entries {
		if existing.ConversationID == entry.ConversationID {
			kept[0].CreatedAt = existing.CreatedAt
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	snapshot.Entries = kept
	snapshot.UpdatedAt = time.Now()
}

// findHistoryEntry 按会话 ID 查找历史条目
func findHistoryEntry(snapshot *models.ChatHistorySnapshot, conversationID string) *models.ChatHistoryEntry {
	for i := range snapshot.Entries {
		if snapshot.Entries[i].ConversationID == conversationID {
			return &snapshot.Entries[i]
		}
	}
	return nil
}

// removeHistoryEntry 删除历史条目，返回是否存在
func removeHistoryEntry(snapshot *models.ChatHistorySnapshot, conversationID string) bool {
	for i := range snapshot.Entries {
		if snapshot.Entries[i].ConversationID == conversationID {
			snapshot.Entries = append(snapshot.Entries[:i], snapshot.Entries[i+1:]...)
			snapshot.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// historyPreview 取最后一条消息的摘要作为列表预览，过长时截断
func historyPreview(messages []models.ChatMessage) string {
	const maxPreviewRunes = 50
	for i := len(messages) - 1; i >= 0; i-- {
		text := strings.TrimSpace(messages[i].Text)
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) > maxPreviewRunes {
			return string(runes[:maxPreviewRunes])
		}
		return text
	}
	return ""
}
