// Package cache 使用 Redis 缓存结构化内容，避免重复调用 LLM
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/model"
)

const keyPrefix = "overcomer:content"

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// Cache 基于 Redis 的内容缓存
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New 连接 Redis，Addr 支持 redis:// URL 或 host:port
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	rdb := redis.NewClient(options(cfg))
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewWithClient(rdb, time.Duration(cfg.TTL)*time.Second), nil
}

// options 解析连接参数，URL 中未给出的密码和库号取自配置
func options(cfg config.CacheConfig) *redis.Options {
	opt, err := redis.ParseURL(cfg.Addr)
	if err != nil {
		return &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}
	if opt.Password == "" {
		opt.Password = cfg.Password
	}
	if opt.DB == 0 {
		opt.DB = cfg.DB
	}
	return opt
}

// NewWithClient 使用已有的 Redis 客户端
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key 返回缓存键，附加上下文取哈希前 16 位。
// 上下文按原样参与哈希，与追加到提示词中的文本一致
func Key(category model.Category, extra string) string {
	if extra == "" {
		return fmt.Sprintf("%s:%s:-", keyPrefix, category)
	}
	sum := sha256.Sum256([]byte(extra))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, category, hex.EncodeToString(sum[:])[:16])
}

// Get 读取缓存的内容
func (c *Cache) Get(ctx context.Context, category model.Category, extra string) (*model.Payload, error) {
	data, err := c.rdb.Get(ctx, Key(category, extra)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var p model.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode cached payload: %w", err)
	}
	return &p, nil
}

// Set 写入缓存
func (c *Cache) Set(ctx context.Context, p *model.Payload, extra string) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(p.Category, extra), data, c.ttl).Err()
}

// Close 关闭连接
func (c *Cache) Close() error {
	return c.rdb.Close()
}
