package constants

import "time"

type (
	FlightStatus string
	PushType     string
	ReminderKind string
	TaskKind     string
	CachePrefix  string
	APIStatus    string
)

const (
	APIStatusOk    APIStatus = "success"
	APIStatusError APIStatus = "error"
)

const (
	StatusScheduled FlightStatus = "SCHEDULED"
	StatusOnTime    FlightStatus = "ON_TIME"
	StatusEarly     FlightStatus = "EARLY"
	StatusDelayed   FlightStatus = "DELAYED"
	StatusLanded    FlightStatus = "LANDED"
	StatusDiverted  FlightStatus = "DIVERTED"
	StatusCanceled  FlightStatus = "CANCELED"

	PushFlightChanged  PushType = "FLIGHT_CHANGED"
	PushFlightDeparted PushType = "FLIGHT_DEPARTED"
	PushFlightArrived  PushType = "FLIGHT_ARRIVED"
	PushFlightDiverted PushType = "FLIGHT_DIVERTED"
	PushFlightCanceled PushType = "FLIGHT_CANCELED"
	PushLeaveSoon      PushType = "LEAVE_SOON"
	PushLeaveNow       PushType = "LEAVE_NOW"

	ReminderLeaveSoon ReminderKind = "leave_soon"
	ReminderLeaveNow  ReminderKind = "leave_now"

	TaskRetrack      TaskKind = "retrack"
	TaskProcessAlert TaskKind = "process_alert"

	CachePrefixFlight      CachePrefix = "FLIGHT_"
	CachePrefixLookup      CachePrefix = "LOOKUP_"
	CachePrefixAirport     CachePrefix = "AIRPORT_"
	CachePrefixDrivingTime CachePrefix = "DRIVE_"
)

// Domain thresholds. Times are in seconds unless the name says otherwise.
const (
	// A flight whose arrival is further in the past than this is no longer
	// worth tracking and gets filtered or swept.
	FlightOldThreshold = 2 * time.Hour

	// Estimated arrivals within this window of the schedule count as on time.
	OnTimeBufferSeconds = 600

	// Default lead the leave-soon reminder fires before the latest moment
	// a user could still leave and make it.
	DefaultReminderLeadSeconds = 300

	// One schedule-check interval. Folded into the leave-soon time so a
	// reminder never fires after a schedule refresh would have moved it.
	ScheduleCheckBufferSeconds = 60

	// Users closer than this to the destination airport don't need driving
	// directions; users farther than the max aren't driving there at all.
	CloseToAirportMiles = 1.0
	FarFromAirportMiles = 200.0

	MaxLookupResults = 45
	LookupBatchSize  = 15

	// Multiplier applied to driving time to pick the deferred re-track
	// checkpoint before the leave-now reminder.
	LeaveNowRetrackFactor = 1.75

	// Alert callbacks are processed after a short delay so the upstream
	// record settles before we fetch it back.
	AlertProcessingDelay = 10 * time.Second
)

// Cache TTLs.
const (
	FlightLookupCacheTime     = 30 * time.Minute
	FlightFromLookupCacheTime = 2 * time.Minute
	FlightCacheTime           = time.Hour
	DrivingTimeCacheTime      = 15 * time.Minute
	// Airports and airline names barely change; a day keeps both backends
	// happy without special "no expiry" handling.
	AirportCacheTime = 24 * time.Hour
)
