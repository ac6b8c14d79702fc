// Package ratelimit throttles credential-guessing attempts against the auth
// endpoints with a fixed-window counter. The in-memory backend suits a single
// instance; setting REDIS_URL shares windows across instances.
package ratelimit

import (
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// EnvRedisURL selects the Redis-backed limiter when set.
const EnvRedisURL = "REDIS_URL"

const keyPrefix = "formworks:rl"

// New returns the limiter selected by the environment.
func New() (Limiter, error) {
	redisURL := strings.TrimSpace(os.Getenv(EnvRedisURL))
	if redisURL == "" {
		return NewMemoryLimiter(), nil
	}
	opts, errParse := redis.ParseURL(redisURL)
	if errParse != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvRedisURL, errParse)
	}
	return NewRedisLimiter(redis.NewClient(opts), keyPrefix), nil
}
