package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/pkg/logger"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// releaseScript deletes the key only if it still holds this holder's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive locks, used to keep two deliveries of
// the same payment event from being processed at once.
type Locker struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewLocker(rdb redis.Cmdable, prefix string, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (l *Locker) key(name string) string {
	return l.prefix + name
}

// Acquire takes the lock for name. The returned release func is safe to call
// when ok is false.
func (l *Locker) Acquire(ctx context.Context, name string) (release func(), ok bool, err error) {
	token := uuid.NewString()
	key := l.key(name)

	ok, err = l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		logger.Error("Failed to acquire redis lock", err, map[string]interface{}{
			"key": key,
		})
		return func() {}, false, err
	}
	if !ok {
		logger.Debug("Redis lock already held", map[string]interface{}{
			"key": key,
		})
		return func() {}, false, nil
	}

	release = func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release redis lock", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	return release, true, nil
}
