package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached per-user ticket lists. Invalidation is best-effort: a failure may
// serve a stale list but can never corrupt ledger state, so errors are
// logged and dropped.

func UserTicketsKey(userID uint) string {
	return fmt.Sprintf("user:%d:tickets", userID)
}

func GetUserTickets(ctx context.Context, rd *redis.Client, userID uint) (string, bool) {
	val, err := rd.Get(ctx, UserTicketsKey(userID)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func PutUserTickets(ctx context.Context, rd *redis.Client, userID uint, payload string) {
	if err := rd.SetEx(ctx, UserTicketsKey(userID), payload, 5*time.Minute).Err(); err != nil {
		log.Printf("[cache] error caching ticket list for user %d: %s\n", userID, err.Error())
	}
}

func InvalidateUserTickets(ctx context.Context, rd *redis.Client, userID uint) {
	if err := rd.Del(ctx, UserTicketsKey(userID)).Err(); err != nil {
		log.Printf("[cache] error invalidating ticket list for user %d: %s\n", userID, err.Error())
	}
}
