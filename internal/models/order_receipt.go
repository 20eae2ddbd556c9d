package models

import "time"

// OrderReceipt 提交成功后的本地订单回执
type OrderReceipt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNo     string    `gorm:"uniqueIndex;size:64" json:"order_no"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Currency    string    `gorm:"size:8" json:"currency"`
	TotalAmount Money     `gorm:"type:decimal(12,2)" json:"total_amount"`
	ItemsJSON   string    `gorm:"type:text" json:"-"`
	PaymentURI  string    `gorm:"size:512" json:"payment_uri,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (OrderReceipt) TableName() string {
	return "order_receipts"
}
