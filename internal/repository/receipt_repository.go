package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mallfront/internal/models"
)

// ReceiptRepository 订单回执数据访问接口
type ReceiptRepository interface {
	Create(receipt *models.OrderReceipt) error
	ListByUser(userID uint, page, pageSize int) ([]models.OrderReceipt, int64, error)
	GetByOrderNo(userID uint, orderNo string) (*models.OrderReceipt, error)
	GetByID(id uint) (*models.OrderReceipt, error)
	WithTx(tx *gorm.DB) *GormReceiptRepository
}

// GormReceiptRepository GORM 实现
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建订单回执仓库
func NewReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReceiptRepository) WithTx(tx *gorm.DB) *GormReceiptRepository {
	if tx == nil {
		return r
	}
	return &GormReceiptRepository{db: tx}
}

// Create 写入回执
func (r *GormReceiptRepository) Create(receipt *models.OrderReceipt) error {
	if receipt == nil {
		return nil
	}
	return r.db.Create(receipt).Error
}

// ListByUser 分页获取用户回执，按创建时间从新到旧
func (r *GormReceiptRepository) ListByUser(userID uint, page, pageSize int) ([]models.OrderReceipt, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	query := r.db.Model(&models.OrderReceipt{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var receipts []models.OrderReceipt
	err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&receipts).Error
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// GetByOrderNo 按订单号获取用户回执
func (r *GormReceiptRepository) GetByOrderNo(userID uint, orderNo string) (*models.OrderReceipt, error) {
	var receipt models.OrderReceipt
	err := r.db.Where("user_id = ? AND order_no = ?", userID, orderNo).First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetByID 按主键获取回执
func (r *GormReceiptRepository) GetByID(id uint) (*models.OrderReceipt, error) {
	var receipt models.OrderReceipt
	err := r.db.First(&receipt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
