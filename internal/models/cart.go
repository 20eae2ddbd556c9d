package models

import "time"

// CartItem 购物车条目（随快照整体以 JSON 持久化）
type CartItem struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice Money     `json:"unit_price"`
	Quantity  int64     `json:"quantity"`
	Image     string    `json:"image,omitempty"`
	Selected  bool      `json:"selected"`
	AddedAt   time.Time `json:"added_at"`
}

// Subtotal 条目小计
func (i CartItem) Subtotal() Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// CartSnapshot 单个用户的购物车快照
type CartSnapshot struct {
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OrderItem 提交订单时的行项目，Name 为加购时的商品名快照
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	Currency  string `json:"currency"`
}
