package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/taskloom/taskloom/internal/model"
)

const (
	// profileCachePrefix is the Redis key prefix for public profiles.
	profileCachePrefix = "profile:"
	// profileCacheTTL bounds staleness when an invalidation is missed.
	profileCacheTTL = 5 * time.Minute
)

// profileKey builds the Redis key for a user's public profile.
func profileKey(userID int64) string {
	return profileCachePrefix + strconv.FormatInt(userID, 10)
}

// GetProfile retrieves a cached public profile.
// Returns nil on a cache miss; misses and corrupt entries are not errors.
func (c *Cache) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &profile, nil
}

// SetProfile caches a public profile.
func (c *Cache) SetProfile(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return c.client.Set(ctx, profileKey(profile.ID), data, profileCacheTTL).Err()
}

// DeleteProfile removes a cached profile. Called after profile updates
// so the next read goes to the store.
func (c *Cache) DeleteProfile(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, profileKey(userID)).Err()
}
