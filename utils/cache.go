package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"voyago/config"
)

var (
	// SessionCacheClient is the dedicated client for conversation state.
	SessionCacheClient *redis.Client
	// AnswerCacheClient is the dedicated client for cached FAQ answers.
	AnswerCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client holding conversation state.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Sessions): %v", err)
	}
}

// GetSessionCacheClient returns the Redis client for conversation state.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitAnswerCache initializes the Redis client for cached FAQ answers.
func InitAnswerCache() {
	AnswerCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := AnswerCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Answer Cache): %v", err)
	}
}

// GetAnswerCacheClient returns the Redis client for cached FAQ answers.
func GetAnswerCacheClient() *redis.Client {
	if AnswerCacheClient == nil {
		InitAnswerCache()
	}
	return AnswerCacheClient
}

// AsynqRedisOpt builds the connection options for the task queue. The queue
// lives in its own Redis DB so asynq keys never collide with sessions.
func AsynqRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
