package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"golang.org/x/exp/slog"
)

// cachedStore 缓存 Get 结果 修改和删除时清除
type cachedStore struct {
	PersonStore
	rdb *goredis.Client
	ttl time.Duration
}

func newCachedStore(s PersonStore, rdb *goredis.Client, ttl time.Duration) *cachedStore {
	return &cachedStore{PersonStore: s, rdb: rdb, ttl: ttl}
}

func cacheKey(id int64) string {
	return "person:" + strconv.FormatInt(id, 10)
}

func (s *cachedStore) Get(ctx context.Context, id int64) (*Person, error) {
	data, err := s.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var p Person
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		// 缓存不可用时直接查询
		slog.WarnContext(ctx, "person cache get failed", "err", err)
	}

	p, err := s.PersonStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		if err := s.rdb.Set(ctx, cacheKey(id), data, s.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "person cache set failed", "err", err)
		}
	}
	return p, nil
}

func (s *cachedStore) Update(ctx context.Context, p *Person) error {
	if err := s.PersonStore.Update(ctx, p); err != nil {
		return err
	}
	s.evict(ctx, p.ID)
	return nil
}

func (s *cachedStore) Delete(ctx context.Context, id int64) error {
	if err := s.PersonStore.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *cachedStore) evict(ctx context.Context, id int64) {
	if err := s.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		slog.WarnContext(ctx, "person cache evict failed", "err", err)
	}
}
