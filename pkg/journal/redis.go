package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// historyKey matches the key the dashboard has always used for its order
// history, so an existing store keeps working across backends.
const historyKey = "orderHistory"

// RedisRepository stores the journal as a Redis list, newest record at the
// head. LPUSH and LTRIM give append and prune in O(1) per write.
type RedisRepository struct {
	client *redis.Client
}

var _ Repository = (*RedisRepository)(nil)

func NewRedisRepository(addr, password string, db int) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *RedisRepository) Read(ctx context.Context) ([]models.OrderRecord, error) {
	vals, err := r.client.LRange(ctx, historyKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	recs := make([]models.OrderRecord, 0, len(vals))
	for _, v := range vals {
		var rec models.OrderRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decode order record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *RedisRepository) Append(ctx context.Context, rec models.OrderRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode order record: %w", err)
	}
	if err := r.client.LPush(ctx, historyKey, data).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}

func (r *RedisRepository) Prune(ctx context.Context, max int) error {
	if max <= 0 {
		return r.Clear(ctx)
	}
	if err := r.client.LTrim(ctx, historyKey, 0, int64(max)-1).Err(); err != nil {
		return fmt.Errorf("redis ltrim: %w", err)
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
