package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds copies of stored carts. The repository stays the source of
// truth. Set must never replace a cached cart with an older version.
type Cache interface {
	Get(ctx context.Context, userID int) (Cart, error)
	Set(ctx context.Context, c Cart) error
	Delete(ctx context.Context, userID int) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, baseTTL: 15 * time.Minute}
}

func (r *RedisCache) Get(ctx context.Context, userID int) (Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrCacheMiss
	}
	if err != nil {
		return Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

// setIfNewer stores the cart and its version unless the cached version is
// already higher. KEYS: cart, version. ARGV: payload, version, ttl ms.
var setIfNewer = redis.NewScript(`
local cached = tonumber(redis.call('GET', KEYS[2]))
if cached and cached > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Set writes c unless a newer version is cached. A skipped write is not an
// error.
func (r *RedisCache) Set(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// jitter spreads expiry so cached carts do not all refill at once
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	keys := []string{cacheKey(c.UserID), versionKey(c.UserID)}
	if err := setIfNewer.Run(ctx, r.client, keys, data, c.Version, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete drops the cached cart. The version marker stays so a slower reader
// cannot refill an older copy.
func (r *RedisCache) Delete(ctx context.Context, userID int) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID int) string {
	return fmt.Sprintf("cart:%d", userID)
}

func versionKey(userID int) string {
	return fmt.Sprintf("cart:%d:version", userID)
}

// NopCache always misses. Used when REDIS_ADDR is unset.
type NopCache struct{}

func (NopCache) Get(context.Context, int) (Cart, error) { return Cart{}, ErrCacheMiss }
func (NopCache) Set(context.Context, Cart) error        { return nil }
func (NopCache) Delete(context.Context, int) error      { return nil }
