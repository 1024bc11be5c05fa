package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLLookup  = 5 * time.Minute // 카테고리/계열사 (변경 빈도 낮음)
	TTLDefault = 1 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixLookup = "lookup:"
)

// ErrMiss 캐시에 값이 없음
var ErrMiss = errors.New("cache miss")

// Service 캐시 서비스 인터페이스 (Redis 또는 프로세스 내 메모리)
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IsAvailable() bool
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 Redis 캐시 서비스 생성
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 키 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// memoryCache go-cache 기반 프로세스 내 캐시 (Redis 미설정 시)
type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryService 프로세스 내 메모리 캐시 생성
func NewMemoryService(defaultTTL time.Duration) Service {
	return &memoryCache{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (c *memoryCache) IsAvailable() bool {
	return true
}

// Get stores JSON bytes so callers see the same copy semantics as Redis
func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := c.store.Get(key)
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(v.([]byte), dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Set(key, data, ttl)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.store.Delete(k)
	}
	return nil
}
