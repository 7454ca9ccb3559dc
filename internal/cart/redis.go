package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/models"
)

// NewRedisClient parses redisURL and checks the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps each cart as a JSON value that expires ttl after the
// last write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func idempotencyKey(key string) string {
	return "idem:checkout:" + key
}

func (r *RedisStore) Get(ctx context.Context, userID string) (models.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return models.Cart{}, err
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return models.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return cart, nil
}

func (r *RedisStore) Save(ctx context.Context, cart models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cartKey(cart.UserID), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, cartKey(userID)).Err()
}

// ReserveIdempotency relies on SET NX, so exactly one concurrent caller
// wins the key.
func (r *RedisStore) ReserveIdempotency(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKey(key), pendingCheckout, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	val, err := r.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) || val == pendingCheckout {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, false, nil
}

func (r *RedisStore) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, idempotencyKey(key), orderID, ttl).Err()
}

func (r *RedisStore) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKey(key)).Err()
}
