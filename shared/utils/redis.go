package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/rentiva/go-rental-saas/shared/models"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return nil
}

// CacheSet stores a value in Redis with expiration
func CacheSet(key string, value string, expiration time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, key, value, expiration).Err()
}

// CacheGet retrieves a value from Redis
func CacheGet(key string) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	val, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("key not found")
	}
	return val, err
}

// CacheDelete removes a key from Redis
func CacheDelete(key string) error {
	return RedisClient.Del(ctx, key).Err()
}

// CacheExists checks if a key exists in Redis
func CacheExists(key string) (bool, error) {
	count, err := RedisClient.Exists(ctx, key).Result()
	return count > 0, err
}

// CacheGetOrCompute returns the cached JSON value for key, or computes it,
// caches it with the given TTL and returns it. Used for the plan catalog,
// which changes rarely but is read on every pricing page load.
func CacheGetOrCompute(key string, ttl time.Duration, compute func() (interface{}, error)) (json.RawMessage, error) {
	if RedisClient != nil {
		if cached, err := RedisClient.Get(ctx, key).Result(); err == nil {
			return json.RawMessage(cached), nil
		}
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cached value: %w", err)
	}

	if RedisClient != nil {
		_ = RedisClient.Set(ctx, key, data, ttl).Err()
	}
	return data, nil
}

// GetRedisClient returns the Redis client instance (for advanced operations)
func GetRedisClient() *redis.Client {
	return RedisClient
}

// GetRedisContext returns the Redis context
func GetRedisContext() context.Context {
	return ctx
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// Token Session Management Functions

// generateTokenHash creates a SHA256 hash of the access token for use as Redis key
func generateTokenHash(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// CreateTokenSession creates a new token session in Redis (token hash as key, no token stored)
func CreateTokenSession(accessToken string, userProfile models.UserProfile, ttl time.Duration) (*models.TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	sessionID := uuid.New().String()
	now := time.Now()

	session := &models.TokenSession{
		UserProfile: userProfile,
		CreatedAt:   now,
		LastUsedAt:  now,
		ExpiresAt:   now.Add(ttl),
		SessionID:   sessionID,
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	tokenHash := generateTokenHash(accessToken)
	key := fmt.Sprintf("token:session:%s", tokenHash)

	if err := RedisClient.Set(ctx, key, sessionData, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return session, nil
}

// GetTokenSession retrieves a token session from Redis (token hash lookup)
func GetTokenSession(accessToken string) (*models.TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	tokenHash := generateTokenHash(accessToken)
	key := fmt.Sprintf("token:session:%s", tokenHash)

	sessionData, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var session models.TokenSession
	if err := json.Unmarshal([]byte(sessionData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		_ = RedisClient.Del(ctx, key).Err()
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// DeleteTokenSession removes a token session from Redis
func DeleteTokenSession(accessToken string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	tokenHash := generateTokenHash(accessToken)
	key := fmt.Sprintf("token:session:%s", tokenHash)
	return RedisClient.Del(ctx, key).Err()
}
