package cache

import (
	"context"
	"encoding/json"
	"errors"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IntentStore is the single write-path to the payment intent cache: one
// put with an explicit TTL, one get, one delete. Absence after expiry is a
// normal outcome, reported as types.ErrNotFound.
type IntentStore interface {
	Put(ctx context.Context, intent *models.PaymentIntent, ttl time.Duration) error
	Get(ctx context.Context, reference string) (*models.PaymentIntent, error)
	Delete(ctx context.Context, reference string) error
}

type RedisIntentStore struct {
	rd *redis.Client
}

func NewRedisIntentStore(rd *redis.Client) *RedisIntentStore {
	return &RedisIntentStore{rd: rd}
}

func intentKey(reference string) string {
	return fmt.Sprintf("intent:%s", reference)
}

func (s *RedisIntentStore) Put(ctx context.Context, intent *models.PaymentIntent, ttl time.Duration) error {
	b, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return s.rd.SetEx(ctx, intentKey(intent.Reference), string(b), ttl).Err()
}

func (s *RedisIntentStore) Get(ctx context.Context, reference string) (*models.PaymentIntent, error) {
	val, err := s.rd.Get(ctx, intentKey(reference)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: intent %s", types.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("%w: %s", types.ErrTransientUpstream, err.Error())
	}
	var intent models.PaymentIntent
	if err := json.Unmarshal([]byte(val), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *RedisIntentStore) Delete(ctx context.Context, reference string) error {
	return s.rd.Del(ctx, intentKey(reference)).Err()
}
