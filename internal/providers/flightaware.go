package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/config"
	"just-landed/tracker/internal/models/dtos"
)

// FlightSource is the upstream flight data API surface the services consume.
type FlightSource interface {
	FlightInfoEx(ctx context.Context, ident string, howMany, offset int) (*dtos.FAFlightInfoExResult, error)
	AirlineFlightInfo(ctx context.Context, faFlightID string) (*dtos.FAAirlineFlightInfo, error)
	AirlineInfo(ctx context.Context, airlineCode string) (*dtos.FAAirlineInfo, error)
	AirportInfo(ctx context.Context, code string) (*dtos.FAAirport, error)
	SetAlert(ctx context.Context, ident string) (int64, error)
	DeleteAlert(ctx context.Context, alertID int64) error
	GetAlerts(ctx context.Context) ([]dtos.FAAlert, error)
	RegisterAlertEndpoint(ctx context.Context, address string) error
}

// FlightAwareClient talks to the FlightAware FlightXML2 JSON API with basic
// auth. All calls honor the request context and time out at the transport.
type FlightAwareClient struct {
	BaseURL  string
	Username string
	APIKey   string
	Client   *http.Client
}

var _ FlightSource = (*FlightAwareClient)(nil)

// Alert channels we subscribe to: filed, departure, arrival, diverted,
// cancelled, pushed over channel 16 (the HTTP endpoint channel).
const alertChannels = "{16 e_filed e_departure e_arrival e_diverted e_cancelled}"

func NewFlightAwareClient(cfg *config.Config) *FlightAwareClient {
	return &FlightAwareClient{
		BaseURL:  cfg.FlightAwareBaseURL,
		Username: cfg.FlightAwareUser,
		APIKey:   cfg.FlightAwareKey,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FlightInfoEx fetches up to howMany flights matching ident, which may be a
// flight number or a specific faFlightID.
func (c *FlightAwareClient) FlightInfoEx(ctx context.Context, ident string, howMany, offset int) (*dtos.FAFlightInfoExResult, error) {
	params := url.Values{}
	params.Set("ident", ident)
	params.Set("howMany", strconv.Itoa(howMany))
	params.Set("offset", strconv.Itoa(offset))

	var resp dtos.FAFlightInfoExResponse
	if err := c.doGET(ctx, "/FlightInfoEx", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		if isNoData(resp.Error) {
			return nil, common.ErrFlightNotFound()
		}
		return nil, common.ErrUnavailable(fmt.Errorf("FlightInfoEx: %s", resp.Error))
	}
	if resp.Result == nil {
		return nil, common.ErrFlightNotFound()
	}
	return resp.Result, nil
}

// AirlineFlightInfo fetches terminal, gate and bag claim details for a
// specific flight.
func (c *FlightAwareClient) AirlineFlightInfo(ctx context.Context, faFlightID string) (*dtos.FAAirlineFlightInfo, error) {
	params := url.Values{}
	params.Set("faFlightID", faFlightID)

	var resp dtos.FAAirlineFlightInfoResponse
	if err := c.doGET(ctx, "/AirlineFlightInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		if isNoData(resp.Error) {
			return nil, common.ErrTerminalsUnknown()
		}
		return nil, common.ErrUnavailable(fmt.Errorf("AirlineFlightInfo: %s", resp.Error))
	}
	return resp.Result, nil
}

// AirlineInfo resolves an airline code to its display name.
func (c *FlightAwareClient) AirlineInfo(ctx context.Context, airlineCode string) (*dtos.FAAirlineInfo, error) {
	params := url.Values{}
	params.Set("airlineCode", airlineCode)

	var resp dtos.FAAirlineInfoResponse
	if err := c.doGET(ctx, "/AirlineInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" || resp.Result == nil {
		return nil, common.ErrUnavailable(fmt.Errorf("AirlineInfo: %s", resp.Error))
	}
	return resp.Result, nil
}

// AirportInfo fetches airport name, city, coordinates and timezone.
func (c *FlightAwareClient) AirportInfo(ctx context.Context, code string) (*dtos.FAAirport, error) {
	params := url.Values{}
	params.Set("airportCode", code)

	var resp dtos.FAAirportInfoResponse
	if err := c.doGET(ctx, "/AirportInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		if isNoData(resp.Error) {
			return nil, common.ErrAirportNotFound(code)
		}
		return nil, common.ErrUnavailable(fmt.Errorf("AirportInfo: %s", resp.Error))
	}
	if resp.Result == nil {
		return nil, common.ErrAirportNotFound(code)
	}
	return resp.Result, nil
}

// SetAlert registers an upstream alert for all event channels on the given
// flight and returns the new alert id.
func (c *FlightAwareClient) SetAlert(ctx context.Context, ident string) (int64, error) {
	params := url.Values{}
	params.Set("alert_id", "0") // 0 creates a new alert
	params.Set("ident", ident)
	params.Set("channels", alertChannels)
	params.Set("max_weekly", "1000")

	var resp dtos.FASetAlertResponse
	if err := c.doGET(ctx, "/SetAlert", params, &resp); err != nil {
		return 0, err
	}
	if resp.Error != "" || resp.Result <= 0 {
		return 0, common.ErrUnableToSetAlert(fmt.Errorf("SetAlert %s: %s", ident, resp.Error))
	}
	return resp.Result, nil
}

// DeleteAlert removes an upstream alert subscription.
func (c *FlightAwareClient) DeleteAlert(ctx context.Context, alertID int64) error {
	params := url.Values{}
	params.Set("alert_id", strconv.FormatInt(alertID, 10))

	var resp dtos.FADeleteAlertResponse
	if err := c.doGET(ctx, "/DeleteAlert", params, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return common.ErrUnableToDeleteAlert(fmt.Errorf("DeleteAlert %d: %s", alertID, resp.Error))
	}
	return nil
}

// GetAlerts lists every alert registered upstream for this account.
func (c *FlightAwareClient) GetAlerts(ctx context.Context) ([]dtos.FAAlert, error) {
	var resp dtos.FAGetAlertsResponse
	if err := c.doGET(ctx, "/GetAlerts", params(nil), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, common.ErrUnavailable(fmt.Errorf("GetAlerts: %s", resp.Error))
	}
	if resp.Result == nil {
		return nil, nil
	}
	return resp.Result.Alerts, nil
}

// RegisterAlertEndpoint points upstream alert delivery at our callback URL.
func (c *FlightAwareClient) RegisterAlertEndpoint(ctx context.Context, address string) error {
	p := url.Values{}
	p.Set("address", address)
	p.Set("format_type", "json/post")

	var resp dtos.FARegisterAlertEndpointResponse
	if err := c.doGET(ctx, "/RegisterAlertEndpoint", p, &resp); err != nil {
		return err
	}
	if resp.Error != "" || resp.Result != 1 {
		return common.ErrUnavailable(fmt.Errorf("RegisterAlertEndpoint: %s", resp.Error))
	}
	return nil
}

func params(v url.Values) url.Values {
	if v == nil {
		return url.Values{}
	}
	return v
}

func (c *FlightAwareClient) doGET(ctx context.Context, endpoint string, p url.Values, result interface{}) error {
	reqURL := c.BaseURL + endpoint
	if encoded := p.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return common.ErrUnavailable(fmt.Errorf("failed to create request: %w", err))
	}
	req.SetBasicAuth(c.Username, c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return common.ErrUnavailable(fmt.Errorf("flight data request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return common.ErrUnavailable(fmt.Errorf("flight data API returned HTTP %d for %s", resp.StatusCode, endpoint))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return common.ErrUnavailable(fmt.Errorf("failed to decode %s response: %w", endpoint, err))
	}
	return nil
}

// isNoData matches the upstream "NO_DATA flight not found" style error
// strings that mean the resource doesn't exist rather than a failure.
func isNoData(errStr string) bool {
	s := strings.ToUpper(errStr)
	return strings.Contains(s, "NO_DATA") || strings.Contains(s, "NOT FOUND") ||
		strings.Contains(s, "UNKNOWN")
}
