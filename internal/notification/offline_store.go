package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OfflineStore 缓存管理员离线期间错过的通知
type OfflineStore interface {
	Append(ctx context.Context, userID string, payload []byte) error
	Drain(ctx context.Context, userID string) ([][]byte, error)
}

// MemoryOfflineStore 简单内存实现
type MemoryOfflineStore struct {
	mu    sync.Mutex
	limit int
	data  map[string][][]byte
}

// NewMemoryOfflineStore 创建内存存储
func NewMemoryOfflineStore(limit int) *MemoryOfflineStore {
	if limit <= 0 {
		limit = 50
	}
	return &MemoryOfflineStore{
		limit: limit,
		data:  make(map[string][][]byte),
	}
}

func (s *MemoryOfflineStore) Append(_ context.Context, userID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := append(s.data[userID], append([]byte(nil), payload...))
	if len(queue) > s.limit {
		queue = queue[len(queue)-s.limit:]
	}
	s.data[userID] = queue
	return nil
}

func (s *MemoryOfflineStore) Drain(_ context.Context, userID string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.data[userID]
	delete(s.data, userID)
	return queue, nil
}

// RedisOfflineStore 基于 Redis 的实现
type RedisOfflineStore struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

// NewRedisOfflineStore 创建 Redis 存储
func NewRedisOfflineStore(client *redis.Client, limit int, ttl time.Duration) *RedisOfflineStore {
	if limit <= 0 {
		limit = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisOfflineStore{client: client, limit: limit, ttl: ttl}
}

func (s *RedisOfflineStore) Append(ctx context.Context, userID string, payload []byte) error {
	if s == nil || s.client == nil {
		return nil
	}
	key := s.key(userID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.limit), -1)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisOfflineStore) Drain(ctx context.Context, userID string) ([][]byte, error) {
	if s == nil || s.client == nil {
		return nil, nil
	}
	key := s.key(userID)
	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if len(values) > 0 {
		_ = s.client.Del(ctx, key).Err()
	}
	result := make([][]byte, 0, len(values))
	for _, v := range values {
		result = append(result, []byte(v))
	}
	return result, nil
}

func (s *RedisOfflineStore) key(userID string) string {
	return "ws_offline:" + userID
}
