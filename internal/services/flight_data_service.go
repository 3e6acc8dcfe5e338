package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/dtos"
	gormModels "just-landed/tracker/internal/models/gorm"
	"just-landed/tracker/internal/providers"
)

// AirportStore is the local static airport store consulted before going
// upstream. Satisfied by repositories.AirportRepository.
type AirportStore interface {
	FindByCode(ctx context.Context, code string) (*gormModels.Airport, error)
	Upsert(ctx context.Context, airport *gormModels.Airport) error
}

// FlightDataService adapts the upstream flight source into the normalized
// model: renames upstream fields, converts durations, enriches airports and
// terminals, filters stale results and maintains the lookup caches.
type FlightDataService struct {
	source   providers.FlightSource
	cache    common.CacheInterface
	airports AirportStore
	now      func() time.Time
}

func NewFlightDataService(source providers.FlightSource, cache common.CacheInterface, airports AirportStore) *FlightDataService {
	return &FlightDataService{
		source:   source,
		cache:    cache,
		airports: airports,
		now:      time.Now,
	}
}

// LookupFlights finds upcoming flights for a sanitized flight number,
// oldest scheduled departure first. Results are cached, but a cached set
// containing any stale flight forces a refetch regardless of TTL.
func (s *FlightDataService) LookupFlights(ctx context.Context, flightNumber string) ([]models.Flight, error) {
	key := common.LookupCacheKey(flightNumber)

	var cached []models.Flight
	if common.GetJSON(s.cache, key, &cached) && len(cached) > 0 && !s.anyOld(cached) {
		return cached, nil
	}

	raw, err := s.fetchAll(ctx, flightNumber)
	if common.IsCode(err, common.CodeFlightNotFound) {
		// The user may have typed the IATA designator for an airline the
		// upstream indexes by ICAO code.
		if icaoIdent, ok := icaoVariant(flightNumber); ok {
			raw, err = s.fetchAll(ctx, icaoIdent)
		}
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	flights := make([]models.Flight, 0, len(raw))
	sawOld := false
	for i := range raw {
		f := s.normalize(ctx, &raw[i])
		if f.IsOld(now) {
			sawOld = true
			continue
		}
		flights = append(flights, f)
	}

	if len(flights) == 0 {
		if sawOld {
			return nil, common.ErrOldFlight()
		}
		return nil, common.ErrFlightNotFound()
	}

	sort.Slice(flights, func(i, j int) bool {
		return flights[i].ScheduledDepartureTime < flights[j].ScheduledDepartureTime
	})

	// Seed per-flight entries so an immediate track request after a lookup
	// is served from cache. Add-if-absent: never clobber fresher data.
	for i := range flights {
		common.AddJSON(s.cache, common.FlightCacheKey(flights[i].FlightID),
			flights[i], constants.FlightFromLookupCacheTime)
	}
	common.SetJSON(s.cache, key, flights, constants.FlightLookupCacheTime)

	return flights, nil
}

// FlightInfo fetches the full detail for one flight, including terminal,
// gate and bag claim, joining the independent upstream calls concurrently.
func (s *FlightDataService) FlightInfo(ctx context.Context, flightID string) (*models.Flight, error) {
	key := common.FlightCacheKey(flightID)

	var cached models.Flight
	if common.GetJSON(s.cache, key, &cached) && cached.FlightID == flightID && !cached.IsOld(s.now()) {
		return &cached, nil
	}

	var (
		result  *dtos.FAFlightInfoExResult
		airline *dtos.FAAirlineFlightInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = s.source.FlightInfoEx(gctx, flightID, 1, 0)
		return err
	})
	g.Go(func() error {
		info, err := s.source.AirlineFlightInfo(gctx, flightID)
		if err != nil {
			// Terminal detail is best-effort; many airlines never file it.
			logging.Debug("No airline flight info", "flight_id", flightID, "error", err.Error())
			return nil
		}
		airline = info
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if result == nil || len(result.Flights) == 0 {
		return nil, common.ErrFlightNotFound()
	}

	f := s.normalize(ctx, &result.Flights[0])
	if airline != nil {
		f.Origin.Terminal = airline.TerminalOrig
		f.Origin.Gate = airline.GateOrig
		f.Destination.Terminal = airline.TerminalDest
		f.Destination.Gate = airline.GateDest
		f.Destination.BagClaim = airline.BagClaim
	}
	s.enrichAirlineName(ctx, &f)

	if f.IsOld(s.now()) {
		return nil, common.ErrOldFlight()
	}

	common.SetJSON(s.cache, key, f, constants.FlightCacheTime)
	return &f, nil
}

// InvalidateFlight drops the cached views of a flight, e.g. when an alert
// callback reports it changed.
func (s *FlightDataService) InvalidateFlight(flightID, flightNumber string) {
	s.cache.Delete(common.FlightCacheKey(flightID))
	if flightNumber != "" {
		s.cache.Delete(common.LookupCacheKey(flightNumber))
	}
}

func (s *FlightDataService) anyOld(flights []models.Flight) bool {
	now := s.now()
	for i := range flights {
		if flights[i].IsOld(now) {
			return true
		}
	}
	return false
}

// fetchAll pages through upstream results up to the lookup cap.
func (s *FlightDataService) fetchAll(ctx context.Context, ident string) ([]dtos.FAFlight, error) {
	var all []dtos.FAFlight
	offset := 0

	for {
		result, err := s.source.FlightInfoEx(ctx, ident, constants.LookupBatchSize, offset)
		if err != nil {
			if len(all) > 0 && common.IsCode(err, common.CodeFlightNotFound) {
				break
			}
			return nil, err
		}
		all = append(all, result.Flights...)

		if result.NextOffset <= 0 || len(all) >= constants.MaxLookupResults {
			break
		}
		offset = int(result.NextOffset)
	}

	if len(all) > constants.MaxLookupResults {
		all = all[:constants.MaxLookupResults]
	}
	return all, nil
}

// normalize maps the raw upstream record into the client vocabulary and
// enriches both endpoints with airport data.
func (s *FlightDataService) normalize(ctx context.Context, raw *dtos.FAFlight) models.Flight {
	f := models.Flight{
		FlightID:                raw.FaFlightID,
		FlightNumber:            raw.Ident,
		AircraftType:            raw.AircraftType,
		ScheduledDepartureTime:  raw.FiledDepartureTime,
		ScheduledFlightDuration: parseFiledEte(raw.FiledEte),
		ActualDepartureTime:     raw.ActualDepartureTime,
		EstimatedArrivalTime:    raw.EstimatedArrival,
		ActualArrivalTime:       raw.ActualArrivalTime,
		Diverted:                raw.Diverted == "true" || raw.Diverted == "1",
		LastUpdated:             s.now().Unix(),
	}

	f.Origin = s.endpoint(ctx, raw.Origin, raw.OriginName, raw.OriginCity)
	f.Destination = s.endpoint(ctx, raw.Destination, raw.DestinationName, raw.DestinationCity)
	return f
}

// endpoint resolves an airport code into a populated endpoint, preferring
// the local store, then the cache, then the upstream provider.
func (s *FlightDataService) endpoint(ctx context.Context, code, name, city string) models.FlightEndpoint {
	ep := models.FlightEndpoint{
		ICAO: code,
		Name: name,
		City: trimCitySuffix(city),
	}
	if code == "" {
		return ep
	}

	if s.airports != nil {
		if airport, err := s.airports.FindByCode(ctx, code); err == nil && airport != nil {
			ep.IATA = airport.IATA
			ep.Country = airport.Country
			ep.Latitude = airport.Latitude
			ep.Longitude = airport.Longitude
			ep.Timezone = airport.Timezone
			if ep.Name == "" {
				ep.Name = airport.Name
			}
			if ep.City == "" {
				ep.City = airport.City
			}
			return ep
		}
	}

	key := common.AirportCacheKey(code)
	var fetched dtos.FAAirport
	if !common.GetJSON(s.cache, key, &fetched) {
		upstream, err := s.source.AirportInfo(ctx, code)
		if err != nil {
			logging.Warn("Airport enrichment failed", "code", code, "error", err.Error())
			return ep
		}
		fetched = *upstream
		common.SetJSON(s.cache, key, fetched, constants.AirportCacheTime)

		if s.airports != nil {
			err := s.airports.Upsert(ctx, &gormModels.Airport{
				ICAO:      code,
				Name:      fetched.Name,
				City:      trimCitySuffix(fetched.Location),
				Latitude:  fetched.Latitude,
				Longitude: fetched.Longitude,
				Timezone:  strings.TrimPrefix(fetched.Timezone, ":"),
			})
			if err != nil {
				logging.Warn("Failed to store fetched airport", "code", code, "error", err.Error())
			}
		}
	}

	if ep.Name == "" {
		ep.Name = fetched.Name
	}
	if ep.City == "" {
		ep.City = trimCitySuffix(fetched.Location)
	}
	ep.Latitude = fetched.Latitude
	ep.Longitude = fetched.Longitude
	ep.Timezone = strings.TrimPrefix(fetched.Timezone, ":")
	return ep
}

// enrichAirlineName resolves the airline designator to a display name,
// cached and best-effort.
func (s *FlightDataService) enrichAirlineName(ctx context.Context, f *models.Flight) {
	code := airlineDesignator(f.FlightNumber)
	if code == "" {
		return
	}

	key := common.AirportCacheKey("AIRLINE_" + code)
	var info dtos.FAAirlineInfo
	if !common.GetJSON(s.cache, key, &info) {
		upstream, err := s.source.AirlineInfo(ctx, code)
		if err != nil {
			return
		}
		info = *upstream
		common.SetJSON(s.cache, key, info, constants.AirportCacheTime)
	}
	if info.Name != "" {
		f.AirlineName = info.Name
	}
}

// parseFiledEte converts the upstream "HH:MM" filed duration to seconds.
func parseFiledEte(ete string) int64 {
	parts := strings.Split(ete, ":")
	if len(parts) < 2 {
		return 0
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0
	}
	mins, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0
	}
	return hours*3600 + mins*60
}

// trimCitySuffix drops the ", CA" style state suffix upstream appends to
// US cities.
func trimCitySuffix(city string) string {
	if idx := strings.Index(city, ","); idx >= 0 {
		return strings.TrimSpace(city[:idx])
	}
	return strings.TrimSpace(city)
}

// airlineDesignator extracts the leading letters of a flight ident.
func airlineDesignator(ident string) string {
	for i, r := range ident {
		if r >= '0' && r <= '9' {
			return ident[:i]
		}
	}
	return ident
}

// icaoVariant rewrites an IATA-prefixed ident to its ICAO form, if the
// airline is known.
func icaoVariant(ident string) (string, bool) {
	if len(ident) < 3 {
		return "", false
	}
	prefix := ident[:2]
	icao, ok := constants.AirlineIATAToICAO[prefix]
	if !ok {
		return "", false
	}
	return icao + ident[2:], true
}
