// Package store 提供客户端状态快照的键值存储端口。
// 快照统一以 JSON 编码，后端可选数据库、Redis 或内存实现。
package store

import "context"

// Store 快照存储端口
type Store interface {
	// Load 读取 key 对应的快照并反序列化到 dest，不存在时返回 false
	Load(ctx context.Context, key string, dest interface{}) (bool, error)
	// Save 将 value 序列化为 JSON 并写入 key
	Save(ctx context.Context, key string, value interface{}) error
	// Delete 删除 key，不存在时视为成功
	Delete(ctx context.Context, key string) error
}
