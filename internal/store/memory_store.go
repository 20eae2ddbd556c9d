package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore 进程内快照存储（用于测试与单机部署）
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore 创建内存快照存储
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Load 读取快照
func (s *MemStore) Load(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Save 写入快照
func (s *MemStore) Save(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// Delete 删除快照
func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
