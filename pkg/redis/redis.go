package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// IRedis tracks failed login attempts per identifier so the password flow can
// throttle brute forcing. Counters expire on their own; a successful login
// clears them early.
type IRedis interface {
	IncrFailedAttempts(ctx context.Context, key string, window time.Duration) (int64, error)
	FailedAttempts(ctx context.Context, key string) (int64, error)
	ResetFailedAttempts(ctx context.Context, key string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) IncrFailedAttempts(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, attemptKey(key)).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error incrementing attempts for %s: %v", key, err))
		return 0, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, attemptKey(key), window).Err(); err != nil {
			logrus.Error(fmt.Sprintf("Error setting attempt window for %s: %v", key, err))
		}
	}

	return count, nil
}

func (r *redisClient) FailedAttempts(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, attemptKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading attempts for %s: %v", key, err))
		return 0, err
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, nil
	}

	return count, nil
}

func (r *redisClient) ResetFailedAttempts(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, attemptKey(key)).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error resetting attempts for %s: %v", key, err))
		return err
	}
	return nil
}

func attemptKey(key string) string {
	return "login_attempts:" + key
}
