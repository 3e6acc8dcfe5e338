package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"just-landed/tracker/internal/constants"
)

// FlightEndpoint is the origin or destination side of a flight, enriched
// with airport data and (when the airline reports them) terminal details.
type FlightEndpoint struct {
	ICAO      string  `json:"icaoCode"`
	IATA      string  `json:"iataCode,omitempty"`
	Name      string  `json:"name,omitempty"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
	Terminal  string  `json:"terminal,omitempty"`
	Gate      string  `json:"gate,omitempty"`
	BagClaim  string  `json:"bagClaim,omitempty"`
}

// Flight is the normalized flight representation served to clients and
// persisted as the tracked snapshot. All times are Unix seconds.
// ActualDepartureTime is 0 when the flight hasn't departed and -1 when it
// was canceled.
type Flight struct {
	FlightID                string         `json:"flightID"`
	FlightNumber            string         `json:"flightNumber"`
	AirlineName             string         `json:"airlineName,omitempty"`
	AircraftType            string         `json:"aircraftType,omitempty"`
	Origin                  FlightEndpoint `json:"origin"`
	Destination             FlightEndpoint `json:"destination"`
	ScheduledDepartureTime  int64          `json:"scheduledDepartureTime"`
	ScheduledFlightDuration int64          `json:"scheduledFlightDuration"`
	ActualDepartureTime     int64          `json:"actualDepartureTime"`
	EstimatedArrivalTime    int64          `json:"estimatedArrivalTime"`
	ActualArrivalTime       int64          `json:"actualArrivalTime"`
	Diverted                bool           `json:"diverted"`
	LastUpdated             int64          `json:"lastUpdated"`
}

const flightCanceled = -1

// ScheduledArrivalTime derives the filed arrival from the filed departure
// and filed duration.
func (f *Flight) ScheduledArrivalTime() int64 {
	if f.ScheduledDepartureTime <= 0 || f.ScheduledFlightDuration <= 0 {
		return 0
	}
	return f.ScheduledDepartureTime + f.ScheduledFlightDuration
}

func (f *Flight) HasDeparted() bool {
	return f.ActualDepartureTime > 0
}

func (f *Flight) HasLanded() bool {
	return f.ActualArrivalTime > 0
}

func (f *Flight) IsCanceled() bool {
	return f.ActualDepartureTime == flightCanceled
}

// Status classifies the flight at the given instant.
func (f *Flight) Status(now time.Time) constants.FlightStatus {
	switch {
	case f.IsCanceled():
		return constants.StatusCanceled
	case !f.HasDeparted():
		buffer := f.ScheduledDepartureTime + constants.OnTimeBufferSeconds
		if f.ScheduledDepartureTime > 0 && now.Unix() > buffer {
			return constants.StatusDelayed
		}
		return constants.StatusScheduled
	case f.Diverted:
		return constants.StatusDiverted
	case f.HasLanded():
		return constants.StatusLanded
	}

	// En route: compare the estimate against the filed arrival.
	delta := f.EstimatedArrivalTime - f.ScheduledArrivalTime()
	switch {
	case delta > constants.OnTimeBufferSeconds:
		return constants.StatusDelayed
	case delta < -constants.OnTimeBufferSeconds:
		return constants.StatusEarly
	default:
		return constants.StatusOnTime
	}
}

// IsOld reports whether the flight's arrival is far enough in the past that
// it no longer makes sense to track it. A flight that has landed is judged
// by its actual arrival; otherwise a positive estimated arrival stands in,
// which covers flights whose final record never got an actual arrival.
func (f *Flight) IsOld(now time.Time) bool {
	arrival := f.ActualArrivalTime
	if arrival <= 0 {
		arrival = f.EstimatedArrivalTime
	}
	if arrival <= 0 {
		return false
	}
	return now.Sub(time.Unix(arrival, 0)) > constants.FlightOldThreshold
}

// International reports whether the flight crosses a country border, which
// changes terminal walk-out expectations and reminder copy.
func (f *Flight) International() bool {
	return f.Origin.Country != "" && f.Destination.Country != "" &&
		!strings.EqualFold(f.Origin.Country, f.Destination.Country)
}

// DetailedStatus renders a human-readable status line for push and UI copy.
func (f *Flight) DetailedStatus(now time.Time) string {
	switch f.Status(now) {
	case constants.StatusCanceled:
		return fmt.Sprintf("Flight %s has been canceled.", f.FlightNumber)
	case constants.StatusDiverted:
		return fmt.Sprintf("Flight %s has been diverted.", f.FlightNumber)
	case constants.StatusLanded:
		ago := now.Sub(time.Unix(f.ActualArrivalTime, 0))
		return fmt.Sprintf("Landed %s ago.", PrettyInterval(ago))
	case constants.StatusScheduled, constants.StatusDelayed:
		if !f.HasDeparted() {
			dep := f.ScheduledDepartureTime
			if dep > 0 && now.Unix() < dep {
				return fmt.Sprintf("Departs in %s.", PrettyInterval(time.Unix(dep, 0).Sub(now)))
			}
			return "Awaiting departure."
		}
		fallthrough
	default:
		if f.EstimatedArrivalTime > 0 && now.Unix() < f.EstimatedArrivalTime {
			eta := time.Unix(f.EstimatedArrivalTime, 0).Sub(now)
			return fmt.Sprintf("Arrives in %s.", PrettyInterval(eta))
		}
		return "Arriving shortly."
	}
}

// PrettyInterval renders a duration as "2 hours 5 minutes" style copy,
// rounding sub-minute intervals up to a minute.
func PrettyInterval(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	mins := int(math.Ceil(d.Minutes()))
	if mins < 1 {
		mins = 1
	}
	hours := mins / 60
	mins = mins % 60

	var parts []string
	if hours == 1 {
		parts = append(parts, "1 hour")
	} else if hours > 1 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if mins == 1 {
		parts = append(parts, "1 minute")
	} else if mins > 1 || hours == 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", mins))
	}
	return strings.Join(parts, " ")
}

// progress returns how far along the flight is, in [0, 1], based on actual
// departure and estimated arrival.
func (f *Flight) progress(now time.Time) float64 {
	if !f.HasDeparted() {
		return 0
	}
	if f.HasLanded() || f.EstimatedArrivalTime <= f.ActualDepartureTime {
		return 1
	}
	p := float64(now.Unix()-f.ActualDepartureTime) /
		float64(f.EstimatedArrivalTime-f.ActualDepartureTime)
	return math.Max(0, math.Min(1, p))
}

// IsNight approximates whether it is currently dark at the aircraft's
// position, interpolated linearly between the endpoints. Used to pick
// quieter push sounds overnight.
func (f *Flight) IsNight(now time.Time) bool {
	p := f.progress(now)
	lat := f.Origin.Latitude + p*(f.Destination.Latitude-f.Origin.Latitude)
	lon := f.Origin.Longitude + p*(f.Destination.Longitude-f.Origin.Longitude)
	return solarElevation(lat, lon, now) < -6 // civil twilight
}

// solarElevation computes the sun's elevation angle in degrees at the given
// coordinates and instant, using the standard declination/hour-angle
// approximation. Accurate to a degree or so, which is plenty here.
func solarElevation(lat, lon float64, t time.Time) float64 {
	utc := t.UTC()
	doy := float64(utc.YearDay())
	frac := float64(utc.Hour()) + float64(utc.Minute())/60.0

	decl := -23.44 * math.Cos(2*math.Pi/365.0*(doy+10))
	solarTime := frac + lon/15.0
	hourAngle := (solarTime - 12) * 15

	latR := lat * math.Pi / 180
	declR := decl * math.Pi / 180
	haR := hourAngle * math.Pi / 180

	sinElev := math.Sin(latR)*math.Sin(declR) + math.Cos(latR)*math.Cos(declR)*math.Cos(haR)
	return math.Asin(sinElev) * 180 / math.Pi
}

// MilesBetween returns the great-circle distance in statute miles between
// two coordinate pairs.
func MilesBetween(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMiles = 3958.8
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
