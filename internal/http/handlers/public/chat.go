package public

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mallfront/internal/http/response"
	"github.com/mallfront/internal/i18n"
)

// ChatSendRequest 发送消息请求；flag 用于预置问题（BEST_SELLING / TOP_RATED）
type ChatSendRequest struct {
	Text string `json:"text"`
	Flag string `json:"flag"`
}

// OpenChat 打开会话；conversation_id 为空时复用或新建当前会话
func (h *Handler) OpenChat(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	conversationID := c.Query("conversation_id")
	view, err := h.ChatService.Open(c.Request.Context(), uid, conversationID, welcomeText(c))
	if err != nil {
		respondChatError(c, err)
		return
	}
	response.Success(c, view)
}

// SendChatMessage 发送消息
func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.invalid_params", err)
		return
	}
	failureText := i18n.T(i18n.ResolveLocale(c), "chat.send_failed")
	result, err := h.ChatService.Send(c.Request.Context(), uid, req.Text, strings.ToUpper(strings.TrimSpace(req.Flag)), failureText)
	if err != nil {
		respondChatError(c, err)
		return
	}
	response.Success(c, result)
}

// GetChatTyping 获取助手回复的逐字输出进度
func (h *Handler) GetChatTyping(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	typing, active := h.ChatService.Typing(uid)
	response.Success(c, gin.H{
		"active": active,
		"typing": typing,
	})
}

// CancelChatTyping 取消逐字输出并立即显示全文
func (h *Handler) CancelChatTyping(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	flushed := h.ChatService.CancelReveal(uid)
	typing, _ := h.ChatService.Typing(uid)
	response.Success(c, gin.H{
		"flushed": flushed,
		"typing":  typing,
	})
}

// NewChatSession 开启新会话，当前会话归档到历史
func (h *Handler) NewChatSession(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.ChatService.NewSession(c.Request.Context(), uid, welcomeText(c))
	if err != nil {
		respondChatError(c, err)
		return
	}
	response.Success(c, view)
}

// ListChatHistory 获取历史会话列表
func (h *Handler) ListChatHistory(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	summaries, err := h.ChatService.History(c.Request.Context(), uid)
	if err != nil {
		respondChatError(c, err)
		return
	}
	response.Success(c, gin.H{"conversations": summaries})
}

// DeleteChatHistory 删除一条历史会话
func (h *Handler) DeleteChatHistory(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	conversationID := strings.TrimSpace(c.Param("conversation_id"))
	if err := h.ChatService.DeleteHistory(c.Request.Context(), uid, conversationID); err != nil {
		respondChatError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
