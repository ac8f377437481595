package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// AnswerCache memoizes generated answers per (document, question, topK).
// Entries expire by TTL; document ids are unique per ingestion, so a deleted
// and re-uploaded file never collides with a stale entry.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Get unmarshals a cached answer into dst. The second return is false on a
// cache miss.
func (c *AnswerCache) Get(ctx context.Context, documentID, question string, topK int, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(documentID, question, topK)).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get answer failed: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("unmarshal cached answer failed: %w", err)
	}
	return true, nil
}

func (c *AnswerCache) Set(ctx context.Context, documentID, question string, topK int, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal answer cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(documentID, question, topK), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

func (c *AnswerCache) key(documentID, question string, topK int) string {
	sum := sha256.Sum256([]byte(question))
	return fmt.Sprintf("rag:answer:%s:%d:%s", documentID, topK, hex.EncodeToString(sum[:16]))
}
