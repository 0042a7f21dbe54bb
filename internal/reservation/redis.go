package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allbirds/storefront/internal/domain/models"
)

const (
	// Reservation per order: reservedItems_{order_id} -> reservation JSON
	keyReservation = "reservedItems_%d"
)

// TTLReservation matches the fixed 24h expiry window, so Redis drops stale
// entries even if nothing reads them again.
var TTLReservation = 24 * time.Hour

// RedisStore keeps reservations in Redis for multi-instance deployments.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	r := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{rdb: r}
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) Reserve(ctx context.Context, res *models.Reservation) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation: %w", err)
	}
	key := fmt.Sprintf(keyReservation, res.OrderID)
	return s.rdb.Set(ctx, key, b, TTLReservation).Err()
}

func (s *RedisStore) GetActive(ctx context.Context, orderID int64) (*models.Reservation, error) {
	key := fmt.Sprintf(keyReservation, orderID)
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	res := &models.Reservation{}
	if err := json.Unmarshal(raw, res); err != nil {
		// Unreadable entry is as good as absent; drop it.
		_ = s.rdb.Del(ctx, key).Err()
		return nil, nil
	}
	// The TTL tracks the expiry window but the stored timestamp stays
	// authoritative; re-check rather than trust the key's presence.
	if res.Expired(time.Now()) {
		_ = s.rdb.Del(ctx, key).Err()
		return nil, nil
	}
	return res, nil
}

func (s *RedisStore) Clear(ctx context.Context, orderID int64) error {
	return s.rdb.Del(ctx, fmt.Sprintf(keyReservation, orderID)).Err()
}

// Sweep is a no-op for Redis: key TTLs already remove expired entries.
func (s *RedisStore) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}
