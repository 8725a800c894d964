package intelligence

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"voyago/models"
)

const answerPrefix = "faq:answer:"

// AnswerCache keeps generated FAQ answers in Redis so a repeated question
// does not re-bill the LLM. Keys combine the topic with a hash of the
// normalized question, so only exact repeats hit.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redis.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl}
}

func cacheKey(intent models.Intent, question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return fmt.Sprintf("%s%s:%x", answerPrefix, intent, sum[:8])
}

// Get returns the cached answer or "" on a miss.
func (c *AnswerCache) Get(ctx context.Context, intent models.Intent, question string) (string, error) {
	answer, err := c.client.Get(ctx, cacheKey(intent, question)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (c *AnswerCache) Set(ctx context.Context, intent models.Intent, question, answer string) error {
	return c.client.Set(ctx, cacheKey(intent, question), answer, c.ttl).Err()
}
