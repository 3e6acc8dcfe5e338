package services

import (
	"context"
	"encoding/json"
	"testing"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/dtos"
	"just-landed/tracker/internal/models/entities"
	"just-landed/tracker/internal/push"
)

type fakeAlertLookup struct {
	alerts map[int64]*entities.FlightAlert
}

func (f *fakeAlertLookup) FindByAlertID(_ context.Context, _ repositories.Queryer, alertID int64) (*entities.FlightAlert, error) {
	return f.alerts[alertID], nil
}

type fakeTrackedLookup struct {
	flights map[string]*entities.TrackedFlight
}

func (f *fakeTrackedLookup) Get(_ context.Context, _ repositories.Queryer, flightID string) (*entities.TrackedFlight, error) {
	return f.flights[flightID], nil
}

type fakeTrackerLookup struct {
	users []entities.User
}

func (f *fakeTrackerLookup) UsersForFlight(_ context.Context, _ repositories.Queryer, _ string) ([]entities.User, error) {
	return f.users, nil
}

type fakeFetcher struct {
	flight      *models.Flight
	err         error
	invalidated []string
}

func (f *fakeFetcher) FlightInfo(_ context.Context, _ string) (*models.Flight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.flight, nil
}

func (f *fakeFetcher) InvalidateFlight(flightID, _ string) {
	f.invalidated = append(f.invalidated, flightID)
}

type fakeRetracker struct {
	refreshed []string
	canceled  []*models.Flight
}

func (f *fakeRetracker) RefreshTracked(_ context.Context, flightID string) error {
	f.refreshed = append(f.refreshed, flightID)
	return nil
}

func (f *fakeRetracker) ApplyCanceled(_ context.Context, _ string, flight *models.Flight) error {
	f.canceled = append(f.canceled, flight)
	return nil
}

type fakeSender struct {
	sent []struct {
		Token string
		Msg   push.Message
	}
	registered   []string
	deregistered []string
}

func (s *fakeSender) Notify(_ context.Context, token string, msg push.Message) error {
	s.sent = append(s.sent, struct {
		Token string
		Msg   push.Message
	}{token, msg})
	return nil
}

func (s *fakeSender) RegisterToken(_ context.Context, token string) error {
	s.registered = append(s.registered, token)
	return nil
}

func (s *fakeSender) DeregisterToken(_ context.Context, token string) error {
	s.deregistered = append(s.deregistered, token)
	return nil
}

func reconcilerFixture(t *testing.T, before *models.Flight, after *models.Flight, users []entities.User) (*AlertReconciler, *fakeRetracker, *fakeSender) {
	t.Helper()

	data, err := json.Marshal(before)
	if err != nil {
		t.Fatal(err)
	}

	alerts := &fakeAlertLookup{alerts: map[int64]*entities.FlightAlert{
		42: {AlertID: 42, FlightID: before.FlightID, FlightNumber: before.FlightNumber, Enabled: true},
	}}
	tracked := &fakeTrackedLookup{flights: map[string]*entities.TrackedFlight{
		before.FlightID: {
			FlightID:           before.FlightID,
			FlightNumber:       before.FlightNumber,
			FlightData:         data,
			OrigDepartureTime:  before.ScheduledDepartureTime,
			OrigFlightDuration: before.ScheduledFlightDuration,
		},
	}}

	retracker := &fakeRetracker{}
	sender := &fakeSender{}
	r := NewAlertReconciler(nil, alerts, tracked, &fakeTrackerLookup{users: users},
		&fakeFetcher{flight: after}, retracker, sender)
	return r, retracker, sender
}

func departedFixtureFlights() (*models.Flight, *models.Flight) {
	before := &models.Flight{
		FlightID:                "UAL100-123",
		FlightNumber:            "UAL100",
		ScheduledDepartureTime:  1_700_000_000,
		ScheduledFlightDuration: 4 * 3600,
		EstimatedArrivalTime:    1_700_000_000 + 4*3600,
	}
	after := *before
	after.ActualDepartureTime = 1_700_000_120
	return before, &after
}

func TestProcessDepartureNotifiesOptedInTrackers(t *testing.T) {
	before, after := departedFixtureFlights()
	users := []entities.User{
		{UUID: "u1", PushToken: "tok1", NotifyDeparted: true},
		{UUID: "u2", PushToken: "tok2", NotifyDeparted: false},
		{UUID: "u3", PushToken: "", NotifyDeparted: true},
	}

	r, retracker, sender := reconcilerFixture(t, before, after, users)
	err := r.Process(context.Background(), &dtos.FAAlertCallback{
		AlertID:   42,
		EventCode: "departure",
		Flight:    dtos.FAFlight{FaFlightID: before.FlightID},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d pushes, want 1", len(sender.sent))
	}
	if sender.sent[0].Token != "tok1" {
		t.Errorf("pushed to %q, want tok1", sender.sent[0].Token)
	}
	if sender.sent[0].Msg.Type != constants.PushFlightDeparted {
		t.Errorf("push type = %s", sender.sent[0].Msg.Type)
	}
	if len(retracker.refreshed) != 1 || retracker.refreshed[0] != before.FlightID {
		t.Errorf("refreshed = %v", retracker.refreshed)
	}
}

func TestProcessUnknownAlertIsIgnored(t *testing.T) {
	before, after := departedFixtureFlights()
	r, retracker, sender := reconcilerFixture(t, before, after, nil)

	err := r.Process(context.Background(), &dtos.FAAlertCallback{AlertID: 9999, EventCode: "departure"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(sender.sent) != 0 || len(retracker.refreshed) != 0 {
		t.Error("unknown alert should be a no-op")
	}
}

func TestProcessUnknownEventCodeRefreshesWithoutNotifying(t *testing.T) {
	before, after := departedFixtureFlights()
	// A real schedule move accompanies the callback; it still must not push.
	after.EstimatedArrivalTime += 600
	users := []entities.User{
		{UUID: "u1", PushToken: "tok1", NotifyChanged: true, NotifyDeparted: true},
	}

	r, retracker, sender := reconcilerFixture(t, before, after, users)
	err := r.Process(context.Background(), &dtos.FAAlertCallback{
		AlertID:   42,
		EventCode: "taxiing",
		Flight:    dtos.FAFlight{FaFlightID: before.FlightID},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("unknown event code sent %d pushes, want 0", len(sender.sent))
	}
	if len(retracker.refreshed) != 1 {
		t.Error("ledger should still be refreshed")
	}
}

func TestProcessCancelledBuildsCanceledView(t *testing.T) {
	before, _ := departedFixtureFlights()
	users := []entities.User{{UUID: "u1", PushToken: "tok1", NotifyCanceled: true}}

	// The fetcher must not be consulted for cancellations; hand it nothing.
	r, retracker, sender := reconcilerFixture(t, before, nil, users)
	err := r.Process(context.Background(), &dtos.FAAlertCallback{
		AlertID:   42,
		EventCode: "cancelled",
		Flight:    dtos.FAFlight{FaFlightID: before.FlightID},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].Msg.Type != constants.PushFlightCanceled {
		t.Fatalf("expected one canceled push, got %+v", sender.sent)
	}
	if len(retracker.canceled) != 1 {
		t.Fatal("expected ApplyCanceled")
	}
	if !retracker.canceled[0].IsCanceled() {
		t.Error("canceled view should carry the cancel sentinel")
	}
	if len(retracker.refreshed) != 0 {
		t.Error("cancellations must not trigger an upstream refetch")
	}
}

func TestProcessChangeWithoutMaterialChangeSkipsPush(t *testing.T) {
	before, _ := departedFixtureFlights()
	same := *before
	users := []entities.User{{UUID: "u1", PushToken: "tok1", NotifyChanged: true}}

	r, retracker, sender := reconcilerFixture(t, before, &same, users)
	err := r.Process(context.Background(), &dtos.FAAlertCallback{
		AlertID:   42,
		EventCode: "change",
		Flight:    dtos.FAFlight{FaFlightID: before.FlightID},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("no-op change should not push, got %d", len(sender.sent))
	}
	if len(retracker.refreshed) != 1 {
		t.Error("ledger should still be refreshed")
	}
}

func TestProcessArrivalWithTerminalChangePushesTwice(t *testing.T) {
	before, after := departedFixtureFlights()
	before.Destination.Terminal = "2"
	after.Destination.Terminal = "5"
	after.ActualArrivalTime = after.EstimatedArrivalTime

	users := []entities.User{{UUID: "u1", PushToken: "tok1", NotifyArrived: true, NotifyChanged: true}}

	r, _, sender := reconcilerFixture(t, before, after, users)
	err := r.Process(context.Background(), &dtos.FAAlertCallback{
		AlertID:   42,
		EventCode: "arrival",
		Flight:    dtos.FAFlight{FaFlightID: before.FlightID},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d pushes, want arrival plus terminal change", len(sender.sent))
	}
	if sender.sent[0].Msg.Type != constants.PushFlightArrived {
		t.Errorf("first push = %s", sender.sent[0].Msg.Type)
	}
	if sender.sent[1].Msg.Type != constants.PushFlightChanged {
		t.Errorf("second push = %s", sender.sent[1].Msg.Type)
	}
}

func TestProcessArrivalWithFirstTerminalAssignmentPushesTwice(t *testing.T) {
	before, after := departedFixtureFlights()
	after.Destination.Terminal = "2"
	after.ActualArrivalTime = after.EstimatedArrivalTime

	users := []entities.User{{UUID: "u1", PushToken: "tok1", NotifyArrived: true, NotifyChanged: true}}

	r, _, sender := reconcilerFixture(t, before, after, users)
	err := r.Process(context.Background(), &dtos.FAAlertCallback{
		AlertID:   42,
		EventCode: "arrival",
		Flight:    dtos.FAFlight{FaFlightID: before.FlightID},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d pushes, want arrival plus terminal assignment", len(sender.sent))
	}
	if sender.sent[1].Msg.Type != constants.PushFlightChanged {
		t.Errorf("second push = %s", sender.sent[1].Msg.Type)
	}
}
