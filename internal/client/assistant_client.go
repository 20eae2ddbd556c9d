package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AssistantClient 会话助手客户端
type AssistantClient struct {
	rest *restClient
}

// NewAssistantClient 创建会话助手客户端
func NewAssistantClient(baseURL, authToken string, timeout time.Duration) (*AssistantClient, error) {
	rest, err := newRESTClient(baseURL, authToken, timeout)
	if err != nil {
		return nil, err
	}
	return &AssistantClient{rest: rest}, nil
}

// AssistantMessage 助手侧的消息记录
type AssistantMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSession 创建新会话并返回会话 ID
func (c *AssistantClient) CreateSession(ctx context.Context, userID uint) (string, error) {
	var result struct {
		ID string `json:"_id"`
	}
	payload := map[string]interface{}{"user_id": userID}
	if err := c.rest.postJSON(ctx, "/api/v1/sessions", payload, &result); err != nil {
		return "", err
	}
	if strings.TrimSpace(result.ID) == "" {
		return "", fmt.Errorf("%w: empty session id", ErrResponseInvalid)
	}
	return result.ID, nil
}

// GetMessages 拉取会话的消息记录
func (c *AssistantClient) GetMessages(ctx context.Context, sessionID string) ([]AssistantMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrRequestFailed)
	}
	var result struct {
		Messages []AssistantMessage `json:"messages"`
	}
	query := url.Values{"session_id": []string{sessionID}}
	if err := c.rest.getJSON(ctx, "/api/v1/messages", query, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// SendMessage 发送消息并返回助手回复原文。flag 为预置问题标识，
// 非空时随请求一并上送，便于助手侧区分预置问题与自由输入。
func (c *AssistantClient) SendMessage(ctx context.Context, sessionID, text, flag string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("%w: session id is required", ErrRequestFailed)
	}
	var result struct {
		Reply string `json:"reply"`
	}
	payload := map[string]interface{}{
		"session_id": sessionID,
		"text":       text,
	}
	if flag = strings.TrimSpace(flag); flag != "" {
		payload["flag"] = flag
	}
	if err := c.rest.postJSON(ctx, "/api/v1/messages", payload, &result); err != nil {
		return "", err
	}
	return result.Reply, nil
}
