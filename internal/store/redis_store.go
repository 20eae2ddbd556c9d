package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的快照存储
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore 创建 Redis 快照存储
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: strings.TrimSuffix(keyPrefix, ":")}
}

func (s *RedisStore) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.keyPrefix, key)
}

// Load 读取快照
func (s *RedisStore) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Save 写入快照（不设过期，客户端状态随显式删除或覆盖失效）
func (s *RedisStore) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.fullKey(key), raw, 0).Err()
}

// Delete 删除快照
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.fullKey(key)).Err()
}
