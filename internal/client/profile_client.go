package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ProfileClient 用户档案客户端
type ProfileClient struct {
	rest *restClient
}

// NewProfileClient 创建用户档案客户端
func NewProfileClient(baseURL, authToken string, timeout time.Duration) (*ProfileClient, error) {
	rest, err := newRESTClient(baseURL, authToken, timeout)
	if err != nil {
		return nil, err
	}
	return &ProfileClient{rest: rest}, nil
}

// ProfileSummary 用户概要信息
type ProfileSummary struct {
	UserID     uint   `json:"user_id"`
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	OrderCount int    `json:"order_count"`
	Balance    string `json:"balance"`
}

// GetSummary 拉取用户概要
func (c *ProfileClient) GetSummary(ctx context.Context, userID uint) (*ProfileSummary, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrRequestFailed)
	}
	var summary ProfileSummary
	query := url.Values{"user_id": []string{fmt.Sprint(userID)}}
	if err := c.rest.getJSON(ctx, "/api/v1/profile/summary", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
