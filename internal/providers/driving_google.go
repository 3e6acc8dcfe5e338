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

// GoogleDrivingSource queries the Google Distance Matrix API with traffic
// awareness.
type GoogleDrivingSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ DrivingTimeSource = (*GoogleDrivingSource)(nil)

func NewGoogleDrivingSource(apiKey string) *GoogleDrivingSource {
	return &GoogleDrivingSource{
		BaseURL: "https://maps.googleapis.com/maps/api/distancematrix/json",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleDrivingSource) Name() string {
	return "google"
}

type googleDistanceResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int64 `json:"value"`
			} `json:"duration"`
			DurationInTraffic struct {
				Value int64 `json:"value"`
			} `json:"duration_in_traffic"`
		} `json:"elements"`
	} `json:"rows"`
}

func (g *GoogleDrivingSource) DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", fromLat, fromLon))
	params.Set("destinations", fmt.Sprintf("%f,%f", toLat, toLon))
	params.Set("departure_time", "now")
	params.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, common.ErrUnavailable(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, common.ErrUnavailable(fmt.Errorf("distance matrix request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, common.ErrUnavailable(fmt.Errorf("distance matrix returned HTTP %d", resp.StatusCode))
	}

	var result googleDistanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, common.ErrUnavailable(fmt.Errorf("failed to decode distance matrix response: %w", err))
	}

	switch result.Status {
	case "OK":
	case "OVER_QUERY_LIMIT":
		return 0, common.ErrQuotaExceeded(g.Name())
	case "REQUEST_DENIED":
		return 0, common.ErrUnavailable(fmt.Errorf("distance matrix request denied"))
	default:
		return 0, common.ErrUnavailable(fmt.Errorf("distance matrix status %s", result.Status))
	}

	if len(result.Rows) == 0 || len(result.Rows[0].Elements) == 0 {
		return 0, common.ErrNoRoute()
	}

	elem := result.Rows[0].Elements[0]
	switch elem.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return 0, common.ErrNoRoute()
	default:
		return 0, common.ErrUnavailable(fmt.Errorf("distance matrix element status %s", elem.Status))
	}

	if elem.DurationInTraffic.Value > 0 {
		return elem.DurationInTraffic.Value, nil
	}
	return elem.Duration.Value, nil
}
