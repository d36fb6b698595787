package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// updateRetries bounds the optimistic WATCH loop in Update.
const updateRetries = 3

// RedisStore keeps each cart as one JSON document under cart:<ownerID> with a
// TTL, so abandoned carts expire on their own. Every write refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func cartKey(ownerID string) string {
	return "cart:" + ownerID
}

func (s *RedisStore) Get(ctx context.Context, ownerID string) (*Cart, error) {
	data, err := s.client.Get(ctx, cartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Put(ctx context.Context, ownerID string, c *Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(ownerID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Update runs mutate against the current cart (nil when absent) and writes the
// result back inside a WATCH transaction. If another writer touches the key
// between read and write the transaction fails and the whole read-modify-write
// is retried against the fresh value.
func (s *RedisStore) Update(ctx context.Context, ownerID string, mutate func(current *Cart) (*Cart, error)) (*Cart, error) {
	key := cartKey(ownerID)

	for attempt := 0; attempt < updateRetries; attempt++ {
		var updated *Cart

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			var current *Cart

			data, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
				current = nil
			case err != nil:
				return fmt.Errorf("redis get cart: %w", err)
			default:
				current = &Cart{}
				if err := json.Unmarshal(data, current); err != nil {
					return fmt.Errorf("unmarshal cart: %w", err)
				}
			}

			next, err := mutate(current)
			if err != nil {
				return err
			}
			next.Version++
			next.UpdatedAt = time.Now().UTC()

			payload, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal cart: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, s.ttl)
				return nil
			})
			if err != nil {
				return err
			}

			updated = next
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, ErrConcurrentUpdate
}

func (s *RedisStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, cartKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}
