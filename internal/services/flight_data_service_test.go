package services

import (
	"context"
	"testing"
	"time"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/models/dtos"
)

type fakeFlightSource struct {
	flightsByIdent map[string][]dtos.FAFlight
	airlineInfo    map[string]*dtos.FAAirlineFlightInfo
	airports       map[string]*dtos.FAAirport
	infoExCalls    int
}

func (f *fakeFlightSource) FlightInfoEx(_ context.Context, ident string, howMany, offset int) (*dtos.FAFlightInfoExResult, error) {
	f.infoExCalls++
	flights, ok := f.flightsByIdent[ident]
	if !ok {
		return nil, common.ErrFlightNotFound()
	}
	if offset >= len(flights) {
		return nil, common.ErrFlightNotFound()
	}
	end := offset + howMany
	if end > len(flights) {
		end = len(flights)
	}
	next := int64(0)
	if end < len(flights) {
		next = int64(end)
	}
	return &dtos.FAFlightInfoExResult{NextOffset: next, Flights: flights[offset:end]}, nil
}

func (f *fakeFlightSource) AirlineFlightInfo(_ context.Context, faFlightID string) (*dtos.FAAirlineFlightInfo, error) {
	if info, ok := f.airlineInfo[faFlightID]; ok {
		return info, nil
	}
	return nil, common.ErrTerminalsUnknown()
}

func (f *fakeFlightSource) AirlineInfo(_ context.Context, _ string) (*dtos.FAAirlineInfo, error) {
	return nil, common.ErrUnavailable(nil)
}

func (f *fakeFlightSource) AirportInfo(_ context.Context, code string) (*dtos.FAAirport, error) {
	if ap, ok := f.airports[code]; ok {
		return ap, nil
	}
	return nil, common.ErrAirportNotFound(code)
}

func (f *fakeFlightSource) SetAlert(_ context.Context, _ string) (int64, error) { return 1, nil }
func (f *fakeFlightSource) DeleteAlert(_ context.Context, _ int64) error        { return nil }
func (f *fakeFlightSource) GetAlerts(_ context.Context) ([]dtos.FAAlert, error) { return nil, nil }
func (f *fakeFlightSource) RegisterAlertEndpoint(_ context.Context, _ string) error {
	return nil
}

func testFAFlight(id string, departure int64) dtos.FAFlight {
	return dtos.FAFlight{
		FaFlightID:         id,
		Ident:              "UAL100",
		FiledEte:           "04:00",
		FiledDepartureTime: departure,
		EstimatedArrival:   departure + 4*3600,
		Origin:             "KSFO",
		Destination:        "KJFK",
		OriginCity:         "San Francisco, CA",
		DestinationCity:    "New York, NY",
	}
}

func newTestFlightDataService(source *fakeFlightSource, at time.Time) *FlightDataService {
	s := NewFlightDataService(source, common.NewCacheService(60, 120), nil)
	s.now = func() time.Time { return at }
	return s
}

func TestLookupFlightsSortsAndFiltersOld(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	source := &fakeFlightSource{
		flightsByIdent: map[string][]dtos.FAFlight{
			"UAL100": {
				testFAFlight("UAL100-later", now.Unix()+7200),
				testFAFlight("UAL100-old", now.Unix()-24*3600),
				testFAFlight("UAL100-sooner", now.Unix()+600),
			},
		},
	}

	s := newTestFlightDataService(source, now)
	flights, err := s.LookupFlights(context.Background(), "UAL100")
	if err != nil {
		t.Fatalf("LookupFlights: %v", err)
	}
	if len(flights) != 2 {
		t.Fatalf("got %d flights, want 2 (old one filtered)", len(flights))
	}
	if flights[0].FlightID != "UAL100-sooner" || flights[1].FlightID != "UAL100-later" {
		t.Errorf("order = %s, %s", flights[0].FlightID, flights[1].FlightID)
	}
	if flights[0].ScheduledFlightDuration != 4*3600 {
		t.Errorf("filed ete not parsed: %d", flights[0].ScheduledFlightDuration)
	}
	if flights[0].Origin.City != "San Francisco" {
		t.Errorf("city suffix not trimmed: %q", flights[0].Origin.City)
	}
}

func TestLookupFlightsStaleCacheForcesRefetch(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	source := &fakeFlightSource{
		flightsByIdent: map[string][]dtos.FAFlight{
			"UAL100": {testFAFlight("UAL100-a", start.Unix()+600)},
		},
	}

	current := start
	s := NewFlightDataService(source, common.NewCacheService(3600, 7200), nil)
	s.now = func() time.Time { return current }

	if _, err := s.LookupFlights(context.Background(), "UAL100"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	callsAfterFirst := source.infoExCalls

	// Second lookup within the TTL is served from cache.
	if _, err := s.LookupFlights(context.Background(), "UAL100"); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if source.infoExCalls != callsAfterFirst {
		t.Error("fresh cached results should not hit upstream")
	}

	// Jump far enough that the cached flight is stale. The TTL hasn't
	// expired, but staleness must win. Upstream now reports a fresh one.
	current = start.Add(12 * time.Hour)
	source.flightsByIdent["UAL100"] = []dtos.FAFlight{
		testFAFlight("UAL100-b", current.Unix()+600),
	}
	flights, err := s.LookupFlights(context.Background(), "UAL100")
	if err != nil {
		t.Fatalf("stale lookup: %v", err)
	}
	if source.infoExCalls == callsAfterFirst {
		t.Fatal("stale cached results must force a refetch")
	}
	if flights[0].FlightID != "UAL100-b" {
		t.Errorf("got %s, want the refetched flight", flights[0].FlightID)
	}
}

func TestLookupFlightsRetriesICAOVariant(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	source := &fakeFlightSource{
		flightsByIdent: map[string][]dtos.FAFlight{
			"BAW284": {testFAFlight("BAW284-a", now.Unix()+600)},
		},
	}

	s := newTestFlightDataService(source, now)
	flights, err := s.LookupFlights(context.Background(), "BA284")
	if err != nil {
		t.Fatalf("LookupFlights: %v", err)
	}
	if len(flights) != 1 || flights[0].FlightID != "BAW284-a" {
		t.Errorf("flights = %+v", flights)
	}
}

func TestLookupFlightsErrorCases(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("unknown flight", func(t *testing.T) {
		s := newTestFlightDataService(&fakeFlightSource{flightsByIdent: map[string][]dtos.FAFlight{}}, now)
		_, err := s.LookupFlights(context.Background(), "UAL100")
		if !common.IsCode(err, common.CodeFlightNotFound) {
			t.Errorf("err = %v, want FLIGHT_NOT_FOUND", err)
		}
	})

	t.Run("only old flights", func(t *testing.T) {
		source := &fakeFlightSource{
			flightsByIdent: map[string][]dtos.FAFlight{
				"UAL100": {testFAFlight("UAL100-old", now.Unix()-48*3600)},
			},
		}
		s := newTestFlightDataService(source, now)
		_, err := s.LookupFlights(context.Background(), "UAL100")
		if !common.IsCode(err, common.CodeOldFlight) {
			t.Errorf("err = %v, want OLD_FLIGHT", err)
		}
	})
}

func TestFlightInfoEnrichesTerminals(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	source := &fakeFlightSource{
		flightsByIdent: map[string][]dtos.FAFlight{
			"UAL100-a": {testFAFlight("UAL100-a", now.Unix()+600)},
		},
		airlineInfo: map[string]*dtos.FAAirlineFlightInfo{
			"UAL100-a": {TerminalOrig: "3", TerminalDest: "7", GateDest: "B12", BagClaim: "4"},
		},
	}

	s := newTestFlightDataService(source, now)
	f, err := s.FlightInfo(context.Background(), "UAL100-a")
	if err != nil {
		t.Fatalf("FlightInfo: %v", err)
	}
	if f.Origin.Terminal != "3" || f.Destination.Terminal != "7" {
		t.Errorf("terminals = %q/%q", f.Origin.Terminal, f.Destination.Terminal)
	}
	if f.Destination.Gate != "B12" || f.Destination.BagClaim != "4" {
		t.Errorf("gate/bag = %q/%q", f.Destination.Gate, f.Destination.BagClaim)
	}

	// Second call is served from cache.
	calls := source.infoExCalls
	if _, err := s.FlightInfo(context.Background(), "UAL100-a"); err != nil {
		t.Fatalf("cached FlightInfo: %v", err)
	}
	if source.infoExCalls != calls {
		t.Error("cached flight should not hit upstream")
	}
}

func TestFlightInfoOldFlight(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	source := &fakeFlightSource{
		flightsByIdent: map[string][]dtos.FAFlight{
			"UAL100-old": {testFAFlight("UAL100-old", now.Unix()-48*3600)},
		},
	}

	s := newTestFlightDataService(source, now)
	_, err := s.FlightInfo(context.Background(), "UAL100-old")
	if !common.IsCode(err, common.CodeOldFlight) {
		t.Errorf("err = %v, want OLD_FLIGHT", err)
	}
}

func TestParseFiledEte(t *testing.T) {
	cases := map[string]int64{
		"04:00": 4 * 3600,
		"00:45": 45 * 60,
		"12:30": 12*3600 + 30*60,
		"":      0,
		"junk":  0,
	}
	for in, want := range cases {
		if got := parseFiledEte(in); got != want {
			t.Errorf("parseFiledEte(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestICAOVariant(t *testing.T) {
	if ident, ok := icaoVariant("BA284"); !ok || ident != "BAW284" {
		t.Errorf("BA284 -> %q, %v", ident, ok)
	}
	if ident, ok := icaoVariant("UA1549"); !ok || ident != "UAL1549" {
		t.Errorf("UA1549 -> %q, %v", ident, ok)
	}
	if _, ok := icaoVariant("ZZ123"); ok {
		t.Error("unknown airline should not map")
	}
	if _, ok := icaoVariant("X1"); ok {
		t.Error("too-short ident should not map")
	}
}
