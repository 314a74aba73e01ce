// Package cache provides a Redis read-through cache in front of a
// ComplaintStore. Only single-complaint lookups (tracking) are cached;
// list and aggregate queries always hit the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/config"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// fillIfCurrent stores ARGV[2] under KEYS[1] only while the version key
// KEYS[2] still holds ARGV[1] ("" meaning absent), so a reader that loaded a
// complaint before a concurrent update cannot cache the old copy.
var fillIfCurrent = redis.NewScript(`
local ver = redis.call('GET', KEYS[2])
if ver == false then ver = '' end
if ver ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ComplaintCache decorates a ComplaintStore. Redis failures are logged and
// the call falls through to the store.
type ComplaintCache struct {
	repository.ComplaintStore
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewComplaintCache wraps store. It returns store unchanged when caching is
// disabled or rdb is nil.
func NewComplaintCache(store repository.ComplaintStore, rdb *redis.Client, cfg config.CacheConfig) repository.ComplaintStore {
	if !cfg.Enabled || rdb == nil {
		return store
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "complaint"
	}
	return &ComplaintCache{ComplaintStore: store, rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *ComplaintCache) key(id string) string { return c.prefix + ":" + id }

func (c *ComplaintCache) versionKey(id string) string { return c.prefix + ":" + id + ":ver" }

// GetComplaint serves from Redis when possible and fills it on a miss.
func (c *ComplaintCache) GetComplaint(ctx context.Context, id string) (*model.Complaint, error) {
	bs, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache: get failed", "id", id, "err", err)
		}
		return c.load(ctx, id)
	}
	var cached model.Complaint
	if jerr := json.Unmarshal(bs, &cached); jerr == nil {
		return &cached, nil
	}
	slog.Warn("cache: dropping undecodable entry", "id", id)
	_ = c.rdb.Del(ctx, c.key(id)).Err()
	return c.load(ctx, id)
}

// load reads from the store and fills the cache unless an update bumped the
// version in between.
func (c *ComplaintCache) load(ctx context.Context, id string) (*model.Complaint, error) {
	ver, err := c.rdb.Get(ctx, c.versionKey(id)).Result()
	versioned := true
	switch {
	case errors.Is(err, redis.Nil):
		ver = ""
	case err != nil:
		slog.Warn("cache: version read failed", "id", id, "err", err)
		versioned = false
	}

	out, err := c.ComplaintStore.GetComplaint(ctx, id)
	if err != nil || !versioned {
		return out, err
	}
	if payload, jerr := json.Marshal(out); jerr == nil {
		keys := []string{c.key(id), c.versionKey(id)}
		if serr := fillIfCurrent.Run(ctx, c.rdb, keys, ver, payload, c.ttl.Milliseconds()).Err(); serr != nil {
			slog.Warn("cache: set failed", "id", id, "err", serr)
		}
	}
	return out, nil
}

// UpdateComplaintStatus writes through, then bumps the version and evicts
// the cached copy in one transaction.
func (c *ComplaintCache) UpdateComplaintStatus(ctx context.Context, id, status, remarks string, at time.Time) error {
	err := c.ComplaintStore.UpdateComplaintStatus(ctx, id, status, remarks, at)
	ictx := context.WithoutCancel(ctx)
	_, derr := c.rdb.TxPipelined(ictx, func(p redis.Pipeliner) error {
		p.Incr(ictx, c.versionKey(id))
		p.Expire(ictx, c.versionKey(id), 2*c.ttl)
		p.Del(ictx, c.key(id))
		return nil
	})
	if derr != nil {
		slog.Warn("cache: invalidate failed", "id", id, "err", derr)
	}
	return err
}
