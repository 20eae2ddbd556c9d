package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mallfront/internal/models"
)

// GormStore 基于 snapshots 表的快照存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建数据库快照存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Load 读取快照
func (s *GormStore) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	var row models.Snapshot
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(row.Value), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Save 写入快照，已存在时覆盖
func (s *GormStore) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	row := models.Snapshot{
		Key:       key,
		Value:     string(raw),
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Delete 删除快照
func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Snapshot{}).Error
}
