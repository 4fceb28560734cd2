package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"console/internal/platform"
)

// ErrSessionNotFound 表示会话不存在或已过期
var ErrSessionNotFound = errors.New("auth: session not found")

// Session 网关侧缓存的登录会话，键为认证后端签发的访问令牌
type Session struct {
	Token     string           `json:"token"`
	User      platform.User    `json:"user"`
	Tenant    *platform.Tenant `json:"tenant,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// SessionStore 会话存储接口
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// MemorySessionStore 内存实现，Redis 不可用时的兜底
type MemorySessionStore struct {
	mu         sync.Mutex
	data       map[string]*Session
	defaultTTL time.Duration
}

// NewMemorySessionStore 创建内存会话存储
func NewMemorySessionStore(defaultTTL time.Duration) *MemorySessionStore {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &MemorySessionStore{
		data:       make(map[string]*Session),
		defaultTTL: defaultTTL,
	}
}

// Save 写入会话
func (s *MemorySessionStore) Save(ctx context.Context, session *Session) error {
	if session.Token == "" {
		return errors.New("auth: session token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stampSession(session, s.defaultTTL)
	copied := *session
	s.data[session.Token] = &copied
	return nil
}

// Get 读取会话，过期则删除并返回 ErrSessionNotFound
func (s *MemorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		delete(s.data, token)
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// Delete 删除会话
func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}

// RedisSessionStore Redis 实现
type RedisSessionStore struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisSessionStore 创建 Redis 会话存储
func NewRedisSessionStore(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisSessionStore {
	if prefix == "" {
		prefix = "session:"
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &RedisSessionStore{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Save 写入会话
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	if session.Token == "" {
		return errors.New("auth: session token is required")
	}
	stampSession(session, s.defaultTTL)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if err := s.client.Set(ctx, s.prefix+session.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Get 读取会话
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.Delete(ctx, token)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete 删除会话
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func stampSession(session *Session, defaultTTL time.Duration) {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = now.Add(defaultTTL)
	}
}
