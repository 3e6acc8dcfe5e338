package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"just-landed/tracker/internal/common"
)

// BingDrivingSource queries the Bing Maps Routes API. Second in the chain
// behind Google.
type BingDrivingSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ DrivingTimeSource = (*BingDrivingSource)(nil)

func NewBingDrivingSource(apiKey string) *BingDrivingSource {
	return &BingDrivingSource{
		BaseURL: "https://dev.virtualearth.net/REST/v1/Routes/Driving",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BingDrivingSource) Name() string {
	return "bing"
}

type bingRoutesResponse struct {
	StatusCode   int `json:"statusCode"`
	ResourceSets []struct {
		Resources []struct {
			TravelDuration        int64 `json:"travelDuration"`
			TravelDurationTraffic int64 `json:"travelDurationTraffic"`
		} `json:"resources"`
	} `json:"resourceSets"`
}

func (b *BingDrivingSource) DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error) {
	params := url.Values{}
	params.Set("wp.0", fmt.Sprintf("%f,%f", fromLat, fromLon))
	params.Set("wp.1", fmt.Sprintf("%f,%f", toLat, toLon))
	params.Set("optimize", "timeWithTraffic")
	params.Set("key", b.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", b.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, common.ErrUnavailable(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return 0, common.ErrUnavailable(fmt.Errorf("routes request failed: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Bing answers 404 when no route exists between the waypoints.
		return 0, common.ErrNoRoute()
	case http.StatusTooManyRequests:
		return 0, common.ErrQuotaExceeded(b.Name())
	default:
		return 0, common.ErrUnavailable(fmt.Errorf("routes API returned HTTP %d", resp.StatusCode))
	}

	var result bingRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, common.ErrUnavailable(fmt.Errorf("failed to decode routes response: %w", err))
	}

	if len(result.ResourceSets) == 0 || len(result.ResourceSets[0].Resources) == 0 {
		return 0, common.ErrNoRoute()
	}

	res := result.ResourceSets[0].Resources[0]
	if res.TravelDurationTraffic > 0 {
		return res.TravelDurationTraffic, nil
	}
	if res.TravelDuration > 0 {
		return res.TravelDuration, nil
	}
	return 0, common.ErrNoRoute()
}
