package services

import (
	"context"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/providers"
)

// DrivingService caches driving-time answers from the provider chain.
// Cache keys round coordinates so nearby origins share an entry.
type DrivingService struct {
	chain providers.DrivingTimeSource
	cache common.CacheInterface
}

func NewDrivingService(chain providers.DrivingTimeSource, cache common.CacheInterface) *DrivingService {
	return &DrivingService{chain: chain, cache: cache}
}

// DrivingTime returns the current driving time in seconds between the two
// points, consulting the cache first.
func (s *DrivingService) DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error) {
	key := common.DrivingTimeCacheKey(s.chain.Name(), fromLat, fromLon, toLat, toLon)

	var cached int64
	if common.GetJSON(s.cache, key, &cached) && cached > 0 {
		return cached, nil
	}

	seconds, err := s.chain.DrivingTime(ctx, fromLat, fromLon, toLat, toLon)
	if err != nil {
		return 0, err
	}

	common.SetJSON(s.cache, key, seconds, constants.DrivingTimeCacheTime)
	return seconds, nil
}

// CachedDrivingTime answers from cache only. Callers that can't afford an
// upstream round trip (alert reconciliation) use this and tolerate a miss.
func (s *DrivingService) CachedDrivingTime(fromLat, fromLon, toLat, toLon float64) (int64, bool) {
	key := common.DrivingTimeCacheKey(s.chain.Name(), fromLat, fromLon, toLat, toLon)

	var cached int64
	if common.GetJSON(s.cache, key, &cached) && cached > 0 {
		return cached, true
	}
	return 0, false
}
