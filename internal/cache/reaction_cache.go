// Package cache holds the Redis-backed reaction tally cache. Redis is an
// accelerator, not a source of truth: every failure degrades to a storage
// rescan, so the server runs fine without it.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"animehub/pkg/logger"
	"animehub/pkg/models"
)

const (
	reactionKeyPrefix = "reactions:"
	reactionTTL       = 10 * time.Minute
)

// ReactionCache caches per-anime like/dislike tallies in a Redis hash
type ReactionCache struct {
	client *redis.Client
}

// NewReactionCache creates a reaction cache on an existing Redis client
func NewReactionCache(client *redis.Client) *ReactionCache {
	return &ReactionCache{client: client}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func reactionKey(animeID int64) string {
	return fmt.Sprintf("%s%d", reactionKeyPrefix, animeID)
}

// Get returns cached tallies; a miss or any Redis error returns ok=false
func (c *ReactionCache) Get(ctx context.Context, animeID int64) (models.ReactionCounts, bool) {
	var counts models.ReactionCounts

	vals, err := c.client.HGetAll(ctx, reactionKey(animeID)).Result()
	if err != nil || len(vals) == 0 {
		if err != nil {
			logger.Debugf("reaction cache read failed: %v", err)
		}
		return counts, false
	}

	likes, err := strconv.ParseInt(vals["likes"], 10, 64)
	if err != nil {
		return counts, false
	}
	dislikes, err := strconv.ParseInt(vals["dislikes"], 10, 64)
	if err != nil {
		return counts, false
	}
	counts.Likes = likes
	counts.Dislikes = dislikes
	return counts, true
}

// Set stores tallies with a TTL so stale entries age out even if an
// invalidation is lost
func (c *ReactionCache) Set(ctx context.Context, animeID int64, counts models.ReactionCounts) {
	key := reactionKey(animeID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, "likes", counts.Likes, "dislikes", counts.Dislikes)
	pipe.Expire(ctx, key, reactionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Debugf("reaction cache write failed: %v", err)
	}
}

// Invalidate drops the cached tallies for an anime
func (c *ReactionCache) Invalidate(ctx context.Context, animeID int64) {
	if err := c.client.Del(ctx, reactionKey(animeID)).Err(); err != nil {
		logger.Debugf("reaction cache invalidate failed: %v", err)
	}
}
