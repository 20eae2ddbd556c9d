package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mallfront/internal/config"
	"github.com/mallfront/internal/constants"
)

var redisClient *redis.Client
var redisPrefix string
var redisEnabled bool

// InitRedis 初始化 Redis 客户端，addr 为空表示停用缓存
func InitRedis(cfg config.RedisConfig) error {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		redisEnabled = false
		return nil
	}
	redisPrefix = strings.TrimSpace(cfg.KeyPrefix)
	if redisPrefix == "" {
		redisPrefix = "mf"
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialMS) * time.Millisecond,
		ReadTimeout:  time.Duration(cfg.ReadMS) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteMS) * time.Millisecond,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdle,
		MaxRetries:   cfg.MaxRetries,
	})
	redisEnabled = true
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return redisEnabled && redisClient != nil
}

// Client 获取 Redis 客户端
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// GetJSON 获取 JSON 缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, buildKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, buildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Del(ctx, buildKey(key)).Err()
}

// UserSummaryKey 用户概要缓存键
func UserSummaryKey(userID uint) string {
	return fmt.Sprintf("%s:%d", constants.UserSummaryCachePrefix, userID)
}

// InvalidateUserSummary 订单提交成功后失效用户概要缓存
func InvalidateUserSummary(ctx context.Context, userID uint) error {
	return Del(ctx, UserSummaryKey(userID))
}

func buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return fmt.Sprintf("%s:%s", redisPrefix, trimmed)
}
