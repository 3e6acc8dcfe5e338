package dtos

// Raw FlightAware FlightXML2 wire shapes. Field tags carry the upstream
// names; normalization into models.Flight renames them to the client
// vocabulary in one place (services.FlightDataService).

type FAFlight struct {
	FaFlightID          string `json:"faFlightID"`
	Ident               string `json:"ident"`
	AircraftType        string `json:"aircrafttype"`
	FiledEte            string `json:"filed_ete"` // "HH:MM"
	FiledDepartureTime  int64  `json:"filed_departuretime"`
	EstimatedArrival    int64  `json:"estimatedarrivaltime"`
	ActualDepartureTime int64  `json:"actualdeparturetime"`
	ActualArrivalTime   int64  `json:"actualarrivaltime"`
	Diverted            string `json:"diverted"`
	Origin              string `json:"origin"`
	Destination         string `json:"destination"`
	OriginName          string `json:"originName"`
	OriginCity          string `json:"originCity"`
	DestinationName     string `json:"destinationName"`
	DestinationCity     string `json:"destinationCity"`
}

type FAFlightInfoExResult struct {
	NextOffset int64      `json:"next_offset"`
	Flights    []FAFlight `json:"flights"`
}

type FAFlightInfoExResponse struct {
	Result *FAFlightInfoExResult `json:"FlightInfoExResult"`
	Error  string                `json:"error"`
}

type FAAirlineFlightInfo struct {
	FaFlightID   string   `json:"faFlightID"`
	Ident        string   `json:"ident"`
	Codeshares   []string `json:"codeshares"`
	TailNumber   string   `json:"tailnumber"`
	TerminalOrig string   `json:"terminal_orig"`
	TerminalDest string   `json:"terminal_dest"`
	GateOrig     string   `json:"gate_orig"`
	GateDest     string   `json:"gate_dest"`
	BagClaim     string   `json:"bag_claim"`
}

type FAAirlineFlightInfoResponse struct {
	Result *FAAirlineFlightInfo `json:"AirlineFlightInfoResult"`
	Error  string               `json:"error"`
}

type FAAirlineInfo struct {
	Name      string `json:"name"`
	Shortname string `json:"shortname"`
	Callsign  string `json:"callsign"`
	Country   string `json:"country"`
}

type FAAirlineInfoResponse struct {
	Result *FAAirlineInfo `json:"AirlineInfoResult"`
	Error  string         `json:"error"`
}

type FAAirport struct {
	Name      string  `json:"name"`
	Location  string  `json:"location"` // city, possibly with a state suffix
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"` // ":America/New_York" style
}

type FAAirportInfoResponse struct {
	Result *FAAirport `json:"AirportInfoResult"`
	Error  string     `json:"error"`
}

type FAAlert struct {
	AlertID int64  `json:"alert_id"`
	Ident   string `json:"ident"`
	Enabled bool   `json:"enabled"`
}

type FAGetAlertsResult struct {
	NumAlerts int64     `json:"num_alerts"`
	Alerts    []FAAlert `json:"alerts"`
}

type FAGetAlertsResponse struct {
	Result *FAGetAlertsResult `json:"GetAlertsResult"`
	Error  string             `json:"error"`
}

type FASetAlertResponse struct {
	Result int64  `json:"SetAlertResult"`
	Error  string `json:"error"`
}

type FADeleteAlertResponse struct {
	Result int64  `json:"DeleteAlertResult"`
	Error  string `json:"error"`
}

type FARegisterAlertEndpointResponse struct {
	Result int64  `json:"RegisterAlertEndpointResult"`
	Error  string `json:"error"`
}

// FAAlertCallback is the POST body FlightAware sends to the registered
// alert endpoint.
type FAAlertCallback struct {
	AlertID          int64    `json:"alert_id"`
	EventCode        string   `json:"eventcode"`
	Summary          string   `json:"summary"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	Flight           FAFlight `json:"flight"`
}
