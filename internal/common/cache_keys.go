package common

import (
	"fmt"

	"just-landed/tracker/internal/constants"
)

// Cache key builders. Keys are deterministic so concurrent callers
// naturally share entries.

func FlightCacheKey(flightID string) string {
	return string(constants.CachePrefixFlight) + flightID
}

func LookupCacheKey(flightNumber string) string {
	return string(constants.CachePrefixLookup) + flightNumber
}

func AirportCacheKey(code string) string {
	return string(constants.CachePrefixAirport) + code
}

// DrivingTimeCacheKey rounds coordinates to two decimal places (roughly a
// kilometer) so nearby origins coalesce onto one cached route.
func DrivingTimeCacheKey(provider string, fromLat, fromLon, toLat, toLon float64) string {
	return fmt.Sprintf("%s%s_%.2f_%.2f_%.2f_%.2f",
		constants.CachePrefixDrivingTime, provider, fromLat, fromLon, toLat, toLon)
}
