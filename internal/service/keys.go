package service

import (
	"fmt"

	"github.com/mallfront/internal/constants"
)

// cartKey 用户购物车快照键
func cartKey(userID uint) string {
	return fmt.Sprintf("user:%d:%s", userID, constants.SnapshotKeyCart)
}

// chatSessionKey 用户当前会话快照键
func chatSessionKey(userID uint) string {
	return fmt.Sprintf("user:%d:%s", userID, constants.SnapshotKeyChatSession)
}

// chatHistoryKey 用户历史会话快照键
func chatHistoryKey(userID uint) string {
	return fmt.Sprintf("user:%d:%s", userID, constants.SnapshotKeyChatHistory)
}
