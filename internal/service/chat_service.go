package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mallfront/internal/client"
	"github.com/mallfront/internal/constants"
	"github.com/mallfront/internal/logger"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/store"
)

// AssistantGateway 会话助手访问接口
type AssistantGateway interface {
	CreateSession(ctx context.Context, userID uint) (string, error)
	GetMessages(ctx context.Context, sessionID string) ([]client.AssistantMessage, error)
	SendMessage(ctx context.Context, sessionID, text, flag string) (string, error)
}

// ChatArchiver 会话转写归档的异步任务接口
type ChatArchiver interface {
	EnqueueTranscriptArchive(ctx context.Context, userID uint, conversationID string) error
}

// ChatView 当前会话视图
type ChatView struct {
	ConversationID string               `json:"conversation_id"`
	SessionID      string               `json:"session_id"`
	Messages       []models.ChatMessage `json:"messages"`
}

// SendResult 发送结果；Delivered 为 false 时用户消息被标记为发送失败
type SendResult struct {
	ConversationID string              `json:"conversation_id"`
	UserMessage    models.ChatMessage  `json:"user_message"`
	BotMessage     *models.ChatMessage `json:"bot_message,omitempty"`
	Delivered      bool                `json:"delivered"`
}

// HistorySummary 历史会话摘要
type HistorySummary struct {
	ConversationID string    `json:"conversation_id"`
	Preview        string    `json:"preview"`
	MessageCount   int       `json:"message_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// 预置问题的发送文案
var cannedQueryText = map[string]string{
	constants.ChatFlagBestSelling: "看看最热销的商品",
	constants.ChatFlagTopRated:    "看看评价最高的商品",
}

// markupChars 命中任意一个字符即按富文本渲染
const markupChars = "!#[](){}*_`"

// ChatService 会话服务
type ChatService struct {
	store        store.Store
	assistant    AssistantGateway
	archiver     ChatArchiver
	reveal       *revealer
	historyLimit int

	sendMu  sync.Mutex
	sending map[uint]bool
}

// NewChatService 创建会话服务；archiver 可为 nil
func NewChatService(snapshots store.Store, assistant AssistantGateway, archiver ChatArchiver, revealInterval time.Duration, historyLimit int) *ChatService {
	if historyLimit < 1 {
		historyLimit = constants.ChatHistoryLimit
	}
	return &ChatService{
		store:        snapshots,
		assistant:    assistant,
		archiver:     archiver,
		reveal:       newRevealer(revealInterval),
		historyLimit: historyLimit,
		sending:      make(map[uint]bool),
	}
}

// Open 打开会话。conversationID 为空（或 "null"/"undefined"）时复用当前
// 会话，没有则新建；指定 conversationID 时从历史中恢复对应会话。
func (s *ChatService) Open(ctx context.Context, userID uint, conversationID, welcomeText string) (*ChatView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	conversationID = normalizeConversationID(conversationID)

	current, found, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if conversationID == "" {
		if found && current.SessionID != "" {
			if len(current.Messages) == 0 {
				if err := s.hydrateSession(ctx, userID, current, welcomeText); err != nil {
					return nil, err
				}
			}
			return sessionView(current), nil
		}
		return s.startSession(ctx, userID, welcomeText)
	}

	if found && current.ConversationID == conversationID {
		return sessionView(current), nil
	}
	return s.restoreSession(ctx, userID, conversationID)
}

// Send 发送消息。先以待确认状态写入用户消息，上游确认后追加助手
// 回复并开始逐字输出；上游失败时用户消息标记为发送失败，并追加一条
// 指向它的助手错误提示。每个用户同一时刻只允许一次发送。
func (s *ChatService) Send(ctx context.Context, userID uint, text, flag, failureText string) (*SendResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	s.sendMu.Lock()
	if s.sending[userID] {
		s.sendMu.Unlock()
		return nil, ErrSendInFlight
	}
	s.sending[userID] = true
	s.sendMu.Unlock()
	defer func() {
		s.sendMu.Lock()
		delete(s.sending, userID)
		s.sendMu.Unlock()
	}()

	flag = strings.TrimSpace(flag)
	canned := flag == constants.ChatFlagBestSelling || flag == constants.ChatFlagTopRated
	if canned && strings.TrimSpace(text) == "" {
		text = cannedQueryText[flag]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}

	current, found, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found || current.SessionID == "" {
		return nil, ErrSessionUnavailable
	}

	// 新的发送先把未完成的逐字输出整体刷出
	s.reveal.Cancel(userID)

	userMessage := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: current.SessionID,
		Sender:    constants.ChatSenderUser,
		Text:      text,
		Flag:      flag,
		Delivery:  constants.ChatDeliveryPending,
		Timestamp: time.Now(),
	}
	current.Messages = append(current.Messages, userMessage)
	if err := s.saveSession(ctx, userID, current); err != nil {
		return nil, err
	}

	reply, err := s.assistant.SendMessage(ctx, current.SessionID, text, flag)
	if err != nil {
		logger.Warnw("assistant send failed", "user_id", userID, "session_id", current.SessionID, "error", err)
		s.markDelivery(current, userMessage.ID, constants.ChatDeliveryFailed)
		userMessage.Delivery = constants.ChatDeliveryFailed
		result := &SendResult{
			ConversationID: current.ConversationID,
			UserMessage:    userMessage,
			Delivered:      false,
		}
		if strings.TrimSpace(failureText) != "" {
			errorMessage := models.ChatMessage{
				ID:        uuid.NewString(),
				SessionID: current.SessionID,
				Sender:    constants.ChatSenderBot,
				Text:      failureText,
				ReplyTo:   userMessage.ID,
				Delivery:  constants.ChatDeliveryConfirmed,
				Timestamp: time.Now(),
			}
			current.Messages = append(current.Messages, errorMessage)
			result.BotMessage = &errorMessage
		}
		if saveErr := s.saveSession(ctx, userID, current); saveErr != nil {
			return nil, saveErr
		}
		return result, nil
	}

	s.markDelivery(current, userMessage.ID, constants.ChatDeliveryConfirmed)
	userMessage.Delivery = constants.ChatDeliveryConfirmed

	botMessage := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: current.SessionID,
		Sender:    constants.ChatSenderBot,
		Text:      reply,
		IsMarkup:  canned || containsMarkup(reply),
		ReplyTo:   userMessage.ID,
		Delivery:  constants.ChatDeliveryConfirmed,
		Timestamp: time.Now(),
	}
	current.Messages = append(current.Messages, botMessage)
	if err := s.saveSession(ctx, userID, current); err != nil {
		return nil, err
	}
	if err := s.upsertHistory(ctx, userID, current); err != nil {
		logger.Warnw("upsert chat history failed", "user_id", userID, "error", err)
	}

	// 富文本回复整体呈现，纯文本回复走逐字输出
	if !botMessage.IsMarkup {
		s.reveal.Start(userID, botMessage.ID, botMessage.Text)
	}

	return &SendResult{
		ConversationID: current.ConversationID,
		UserMessage:    userMessage,
		BotMessage:     &botMessage,
		Delivered:      true,
	}, nil
}

// Typing 获取逐字输出进度；没有进行中的输出时返回 false
func (s *ChatService) Typing(userID uint) (TypingView, bool) {
	return s.reveal.View(userID)
}

// CancelReveal 取消逐字输出并立即显示全文
func (s *ChatService) CancelReveal(userID uint) bool {
	return s.reveal.Cancel(userID)
}

// NewSession 开启新会话。当前会话有对话内容时先归档到历史。
func (s *ChatService) NewSession(ctx context.Context, userID uint, welcomeText string) (*ChatView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	current, found, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found && hasUserMessages(current.Messages) {
		if err := s.upsertHistory(ctx, userID, current); err != nil {
			return nil, err
		}
		if s.archiver != nil {
			if err := s.archiver.EnqueueTranscriptArchive(ctx, userID, current.ConversationID); err != nil {
				logger.Warnw("enqueue transcript archive failed", "user_id", userID, "conversation_id", current.ConversationID, "error", err)
			}
		}
	}
	s.reveal.Reset(userID)
	return s.startSession(ctx, userID, welcomeText)
}

// History 获取历史会话摘要，按更新时间从新到旧
func (s *ChatService) History(ctx context.Context, userID uint) ([]HistorySummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]HistorySummary, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		summaries = append(summaries, HistorySummary{
			ConversationID: entry.ConversationID,
			Preview:        entry.Preview,
			MessageCount:   len(entry.Messages),
			CreatedAt:      entry.CreatedAt,
			UpdatedAt:      entry.UpdatedAt,
		})
	}
	return summaries, nil
}

// HistoryEntry 获取一条完整的历史会话（含消息记录）
func (s *ChatService) HistoryEntry(ctx context.Context, userID uint, conversationID string) (*models.ChatHistoryEntry, error) {
	if userID == 0 || strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := findHistoryEntry(snapshot, conversationID)
	if entry == nil {
		return nil, ErrHistoryNotFound
	}
	return entry, nil
}

// DeleteHistory 删除一条历史会话
func (s *ChatService) DeleteHistory(ctx context.Context, userID uint, conversationID string) error {
	if userID == 0 || strings.TrimSpace(conversationID) == "" {
		return ErrInvalidInput
	}
	snapshot, err := s.loadHistory(ctx, userID)
	if err != nil {
		return err
	}
	if !removeHistoryEntry(snapshot, conversationID) {
		return ErrHistoryNotFound
	}
	return s.store.Save(ctx, chatHistoryKey(userID), snapshot)
}

func (s *ChatService) startSession(ctx context.Context, userID uint, welcomeText string) (*ChatView, error) {
	sessionID, err := s.assistant.CreateSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot := &models.ChatSessionSnapshot{
		SessionID:      sessionID,
		ConversationID: uuid.NewString(),
	}
	if strings.TrimSpace(welcomeText) != "" {
		snapshot.Messages = []models.ChatMessage{welcomeMessage(sessionID, welcomeText)}
	}
	if err := s.saveSession(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return sessionView(snapshot), nil
}

// hydrateSession 本地快照有会话但没有消息时，从上游补拉消息记录；
// 上游也为空则填充欢迎语
func (s *ChatService) hydrateSession(ctx context.Context, userID uint, snapshot *models.ChatSessionSnapshot, welcomeText string) error {
	upstream, err := s.assistant.GetMessages(ctx, snapshot.SessionID)
	if err != nil {
		return err
	}
	snapshot.Messages = convertAssistantMessages(snapshot.SessionID, upstream)
	if len(snapshot.Messages) == 0 && strings.TrimSpace(welcomeText) != "" {
		snapshot.Messages = []models.ChatMessage{welcomeMessage(snapshot.SessionID, welcomeText)}
	}
	return s.saveSession(ctx, userID, snapshot)
}

func welcomeMessage(sessionID, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    constants.ChatSenderBot,
		Text:      text,
		Delivery:  constants.ChatDeliveryConfirmed,
		Timestamp: time.Now(),
	}
}

func (s *ChatService) restoreSession(ctx context.Context, userID uint, conversationID string) (*ChatView, error) {
	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := findHistoryEntry(history, conversationID)
	if entry == nil {
		return nil, ErrHistoryNotFound
	}

	messages := entry.Messages
	if len(messages) == 0 && entry.SessionID != "" {
		upstream, err := s.assistant.GetMessages(ctx, entry.SessionID)
		if err != nil {
			return nil, err
		}
		messages = convertAssistantMessages(entry.SessionID, upstream)
	}

	snapshot := &models.ChatSessionSnapshot{
		SessionID:      entry.SessionID,
		ConversationID: entry.ConversationID,
		Messages:       messages,
	}
	if err := s.saveSession(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	s.reveal.Reset(userID)
	return sessionView(snapshot), nil
}

func (s *ChatService) upsertHistory(ctx context.Context, userID uint, current *models.ChatSessionSnapshot) error {
	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return err
	}
	upsertHistoryEntry(history, models.ChatHistoryEntry{
		ConversationID: current.ConversationID,
		SessionID:      current.SessionID,
		Messages:       current.Messages,
	}, s.historyLimit)
	return s.store.Save(ctx, chatHistoryKey(userID), history)
}

func (s *ChatService) loadSession(ctx context.Context, userID uint) (*models.ChatSessionSnapshot, bool, error) {
	snapshot := &models.ChatSessionSnapshot{}
	found, err := s.store.Load(ctx, chatSessionKey(userID), snapshot)
	if err != nil {
		return nil, false, err
	}
	return snapshot, found, nil
}

func (s *ChatService) saveSession(ctx context.Context, userID uint, snapshot *models.ChatSessionSnapshot) error {
	snapshot.UpdatedAt = time.Now()
	return s.store.Save(ctx, chatSessionKey(userID), snapshot)
}

func (s *ChatService) loadHistory(ctx context.Context, userID uint) (*models.ChatHistorySnapshot, error) {
	snapshot := &models.ChatHistorySnapshot{}
	if _, err := s.store.Load(ctx, chatHistoryKey(userID), snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *ChatService) markDelivery(snapshot *models.ChatSessionSnapshot, messageID, delivery string) {
	for i := range snapshot.Messages {
		if snapshot.Messages[i].ID == messageID {
			snapshot.Messages[i].Delivery = delivery
			return
		}
	}
}

func sessionView(snapshot *models.ChatSessionSnapshot) *ChatView {
	messages := snapshot.Messages
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return &ChatView{
		ConversationID: snapshot.ConversationID,
		SessionID:      snapshot.SessionID,
		Messages:       messages,
	}
}

// normalizeConversationID 过滤前端传来的无效会话标识
func normalizeConversationID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "", "null", "undefined":
		return ""
	}
	return trimmed
}

// containsMarkup 判断文本是否包含富文本标记字符
func containsMarkup(text string) bool {
	return strings.ContainsAny(text, markupChars)
}

func hasUserMessages(messages []models.ChatMessage) bool {
	for _, message := range messages {
		if message.Sender == constants.ChatSenderUser {
			return true
		}
	}
	return false
}

func convertAssistantMessages(sessionID string, upstream []client.AssistantMessage) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, len(upstream))
	for _, m := range upstream {
		sender := constants.ChatSenderBot
		if strings.EqualFold(m.Role, "user") {
			sender = constants.ChatSenderUser
		}
		messages = append(messages, models.ChatMessage{
			ID:        m.ID,
			SessionID: sessionID,
			Sender:    sender,
			Text:      m.Text,
			IsMarkup:  sender == constants.ChatSenderBot && containsMarkup(m.Text),
			Delivery:  constants.ChatDeliveryConfirmed,
			Timestamp: m.CreatedAt,
		})
	}
	return messages
}
