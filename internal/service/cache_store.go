package service

import (
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/redis"
	"context"
	"errors"
	"time"
)

// TierStore 分层缓存存储抽象，条目生命周期完全由存储端管理
type TierStore interface {
	Get(ctx context.Context, tier, key string) (string, bool, error)
	Set(ctx context.Context, tier, key, value string, ttl time.Duration) error
	Clear(ctx context.Context, tier string) (int64, error)
}

type redisTierStore struct{}

func NewRedisTierStore() TierStore {
	return &redisTierStore{}
}

func tierKey(tier, key string) string {
	return consts.CacheKeyPrefix + tier + ":" + key
}

func (s *redisTierStore) Get(ctx context.Context, tier, key string) (string, bool, error) {
	value, err := redis.GetValue(ctx, tierKey(tier, key))
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *redisTierStore) Set(ctx context.Context, tier, key, value string, ttl time.Duration) error {
	return redis.SetWithExpiration(ctx, tierKey(tier, key), value, ttl)
}

func (s *redisTierStore) Clear(ctx context.Context, tier string) (int64, error) {
	return redis.DeleteByPrefix(ctx, consts.CacheKeyPrefix+tier+":")
}
