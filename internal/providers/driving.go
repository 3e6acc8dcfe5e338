package providers

import (
	"context"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/logging"
)

// DrivingTimeSource estimates current door-to-airport driving time in
// seconds between two coordinate pairs.
type DrivingTimeSource interface {
	Name() string
	DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error)
}

// DrivingTimeChain tries sources in order. A no-route answer is
// authoritative and stops the chain; any other failure falls through to the
// next source. When every source fails, the last error propagates.
type DrivingTimeChain struct {
	sources []DrivingTimeSource
}

var _ DrivingTimeSource = (*DrivingTimeChain)(nil)

func NewDrivingTimeChain(sources ...DrivingTimeSource) *DrivingTimeChain {
	return &DrivingTimeChain{sources: sources}
}

func (c *DrivingTimeChain) Name() string {
	return "chain"
}

func (c *DrivingTimeChain) DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error) {
	var lastErr error

	for _, src := range c.sources {
		seconds, err := src.DrivingTime(ctx, fromLat, fromLon, toLat, toLon)
		if err == nil {
			return seconds, nil
		}
		if common.IsCode(err, common.CodeNoRoute) {
			// No source will find a route another couldn't.
			return 0, err
		}
		logging.Warn("Driving time source failed, trying next",
			"source", src.Name(), "error", err.Error())
		lastErr = err
	}

	if lastErr == nil {
		lastErr = common.ErrUnavailable(nil)
	}
	return 0, lastErr
}
