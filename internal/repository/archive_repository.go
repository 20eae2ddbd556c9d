package repository

import (
	"gorm.io/gorm"

	"github.com/mallfront/internal/models"
)

// ArchiveRepository 会话归档数据访问接口
type ArchiveRepository interface {
	Create(archive *models.TranscriptArchive) error
	ListByUser(userID uint, limit int) ([]models.TranscriptArchive, error)
}

// GormArchiveRepository GORM 实现
type GormArchiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository 创建会话归档仓库
func NewArchiveRepository(db *gorm.DB) *GormArchiveRepository {
	return &GormArchiveRepository{db: db}
}

// Create 写入归档
func (r *GormArchiveRepository) Create(archive *models.TranscriptArchive) error {
	if archive == nil {
		return nil
	}
	return r.db.Create(archive).Error
}

// ListByUser 获取用户归档，按创建时间从新到旧
func (r *GormArchiveRepository) ListByUser(userID uint, limit int) ([]models.TranscriptArchive, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var archives []models.TranscriptArchive
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&archives).Error
	if err != nil {
		return nil, err
	}
	return archives, nil
}
