package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// TestCache holds full test trees in redis for the hot read path. Entries
// keep the answer key; sanitizing for the caller happens after the read.
// A nil *TestCache is valid and disables caching entirely.
type TestCache struct {
	client *redis.Client
	ttl    time.Duration
}

type CachedTestTree struct {
	Test      models.Test       `json:"test"`
	Questions []models.Question `json:"questions"`
}

func NewTestCache(cfg config.RedisConfig) (*TestCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TestCache{client: client, ttl: ttl}, nil
}

func key(testID string) string {
	return "assessment:test-tree:" + testID
}

func (c *TestCache) Get(ctx context.Context, testID string) (*CachedTestTree, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(testID)).Bytes()
	if err != nil {
		return nil, false
	}
	var tree CachedTestTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, false
	}
	return &tree, true
}

func (c *TestCache) Set(ctx context.Context, testID string, tree *CachedTestTree) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(testID), raw, c.ttl).Err(); err != nil {
		log.Printf("Failed to cache test %s: %v", testID, err)
	}
}

func (c *TestCache) Invalidate(ctx context.Context, testID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, key(testID)).Err(); err != nil {
		log.Printf("Failed to invalidate cached test %s: %v", testID, err)
	}
}

func (c *TestCache) Close() {
	if c == nil {
		return
	}
	_ = c.client.Close()
}
