package redis

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/booking"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker is a booking.Locker shared by every instance talking to the
// same Redis.
type SlotLocker struct {
	client *redis.Client
}

var _ booking.Locker = (*SlotLocker)(nil)

func NewSlotLocker(client *redis.Client) *SlotLocker {
	return &SlotLocker{client: client}
}

func lockKey(key string) string {
	return keyPrefix + "lock:" + key
}

func (l *SlotLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	full := lockKey(key)
	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, booking.ErrSlotLocked
	}
	return func() {
		// The request context may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{full}, token).Err(); err != nil {
			log.Printf("Failed to release lock %s: %v", full, err)
		}
	}, nil
}
