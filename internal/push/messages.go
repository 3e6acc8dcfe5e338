package push

import (
	"fmt"
	"time"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/models"
)

// Sounds shipped in the client bundle. Overnight arrivals get the quiet
// variant so a 3am landing doesn't wake the whole house.
const (
	soundDefault = "notification.caf"
	soundQuiet   = "notification_quiet.caf"
)

func soundFor(f *models.Flight, now time.Time) string {
	if f.IsNight(now) {
		return soundQuiet
	}
	return soundDefault
}

// destinationName prefers the airport's city over its formal name.
func destinationName(f *models.Flight) string {
	if f.Destination.City != "" {
		return f.Destination.City
	}
	if f.Destination.Name != "" {
		return f.Destination.Name
	}
	return f.Destination.ICAO
}

// arrivalDetail appends terminal guidance when it's known.
func arrivalDetail(f *models.Flight) string {
	switch {
	case f.International():
		return " Meet them at the international terminal."
	case f.Destination.Terminal != "":
		return fmt.Sprintf(" Meet them at terminal %s.", f.Destination.Terminal)
	default:
		return ""
	}
}

// ForAlert builds the push message for a flight event.
func ForAlert(t constants.PushType, f *models.Flight, now time.Time) Message {
	var body string
	switch t {
	case constants.PushFlightChanged:
		body = fmt.Sprintf("Flight plans for %s have changed. %s", f.FlightNumber, f.DetailedStatus(now))
	case constants.PushFlightDeparted:
		origin := f.Origin.City
		if origin == "" {
			origin = f.Origin.ICAO
		}
		body = fmt.Sprintf("%s just took off from %s. %s", f.FlightNumber, origin, f.DetailedStatus(now))
	case constants.PushFlightArrived:
		body = fmt.Sprintf("%s just landed at %s.%s", f.FlightNumber, destinationName(f), arrivalDetail(f))
	case constants.PushFlightDiverted:
		body = fmt.Sprintf("%s has been diverted to another airport. Check with the airline before heading out.", f.FlightNumber)
	case constants.PushFlightCanceled:
		body = fmt.Sprintf("%s has been canceled.", f.FlightNumber)
	default:
		body = f.DetailedStatus(now)
	}

	return Message{
		Type:  t,
		Body:  body,
		Sound: soundFor(f, now),
		Extra: map[string]string{
			"flightID":     f.FlightID,
			"flightNumber": f.FlightNumber,
		},
	}
}

// ForReminder builds the leave-soon or leave-now message.
func ForReminder(kind constants.ReminderKind, f *models.Flight, now time.Time) Message {
	var body string
	var t constants.PushType

	switch kind {
	case constants.ReminderLeaveNow:
		t = constants.PushLeaveNow
		body = fmt.Sprintf("Leave now to pick up %s at %s.%s",
			f.FlightNumber, destinationName(f), arrivalDetail(f))
	default:
		t = constants.PushLeaveSoon
		eta := "soon"
		if f.EstimatedArrivalTime > 0 {
			eta = "in " + models.PrettyInterval(time.Unix(f.EstimatedArrivalTime, 0).Sub(now))
		}
		body = fmt.Sprintf("Time to get ready to leave. %s arrives %s.", f.FlightNumber, eta)
	}

	return Message{
		Type:  t,
		Body:  body,
		Sound: soundFor(f, now),
		Extra: map[string]string{
			"flightID":     f.FlightID,
			"flightNumber": f.FlightNumber,
		},
	}
}
