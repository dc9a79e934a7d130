package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vibemesh/logger"
	"vibemesh/model"

	"github.com/redis/go-redis/v9"
)

// AnalysisCache is a TTL'd Redis hot cache of shaped analysis records
// sitting in front of the object store. The object store stays
// authoritative; a cache miss or Redis outage is never fatal.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisCache creates a hot cache with the given entry TTL.
func NewAnalysisCache(client *redis.Client, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{client: client, ttl: ttl}
}

func cacheKey(trackName string) string {
	return "analysis:" + trackName
}

// Get returns the cached record for a track, or (nil, nil) on a miss.
func (c *AnalysisCache) Get(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	data, err := c.client.Get(ctx, cacheKey(trackName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var analysis model.TrackAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		// A corrupt entry is dropped so the next read repopulates it.
		logger.Warn("Dropping corrupt analysis cache entry",
			logger.String("track", trackName),
			logger.ErrorField(err))
		c.client.Del(ctx, cacheKey(trackName))
		return nil, nil
	}
	return &analysis, nil
}

// Set stores a record under the track name with the configured TTL.
func (c *AnalysisCache) Set(ctx context.Context, trackName string, analysis *model.TrackAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(trackName), data, c.ttl).Err()
}
