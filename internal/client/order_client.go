package client

import (
	"context"
	"time"

	"github.com/mallfront/internal/models"
)

// OrderClient 订单中心客户端
type OrderClient struct {
	rest *restClient
}

// NewOrderClient 创建订单中心客户端
func NewOrderClient(baseURL, authToken string, timeout time.Duration) (*OrderClient, error) {
	rest, err := newRESTClient(baseURL, authToken, timeout)
	if err != nil {
		return nil, err
	}
	return &OrderClient{rest: rest}, nil
}

// OrderCreateInput 创建订单输入
type OrderCreateInput struct {
	UserID      uint               `json:"user_id"`
	Currency    string             `json:"currency"`
	TotalAmount models.Money       `json:"total_amount"`
	Items       []models.OrderItem `json:"items"`
}

// OrderCreateResult 创建订单结果；Message 为 "success" 时表示受理成功
type OrderCreateResult struct {
	Message    string `json:"message"`
	OrderNo    string `json:"order_no"`
	PaymentURI string `json:"payment_uri"`
}

// CreateOrder 提交订单
func (c *OrderClient) CreateOrder(ctx context.Context, input OrderCreateInput) (*OrderCreateResult, error) {
	var result OrderCreateResult
	if err := c.rest.postJSON(ctx, "/api/v1/orders", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
