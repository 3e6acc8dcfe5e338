package services

import (
	"testing"
	"time"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/entities"
)

func reminderTestFlight(estArrival int64) *models.Flight {
	return &models.Flight{
		FlightID:             "UAL100-1700000000-airline-0001",
		FlightNumber:         "UAL100",
		ActualDepartureTime:  estArrival - 4*3600,
		EstimatedArrivalTime: estArrival,
	}
}

func TestComputeReminderTimes(t *testing.T) {
	estArrival := int64(1_700_000_000)
	f := reminderTestFlight(estArrival)

	leaveSoon, leaveNow, ok := ComputeReminderTimes(f, 1800, 300)
	if !ok {
		t.Fatal("expected reminder times to be computable")
	}
	if want := estArrival - 1800; leaveNow != want {
		t.Errorf("leaveNow = %d, want %d", leaveNow, want)
	}
	// leave-now minus half the drive, a schedule-check interval, and lead.
	if want := estArrival - 1800 - 900 - 60 - 300; leaveSoon != want {
		t.Errorf("leaveSoon = %d, want %d", leaveSoon, want)
	}
	if leaveSoon >= leaveNow {
		t.Error("leaveSoon must precede leaveNow")
	}
}

func TestComputeReminderTimesNotComputable(t *testing.T) {
	estArrival := int64(1_700_000_000)

	canceled := reminderTestFlight(estArrival)
	canceled.ActualDepartureTime = -1

	diverted := reminderTestFlight(estArrival)
	diverted.Diverted = true

	noArrival := reminderTestFlight(0)

	cases := []struct {
		name    string
		flight  *models.Flight
		driving int64
	}{
		{"nil flight", nil, 1800},
		{"no estimated arrival", noArrival, 1800},
		{"no driving time", reminderTestFlight(estArrival), 0},
		{"canceled", canceled, 1800},
		{"diverted", diverted, 1800},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, ok := ComputeReminderTimes(tc.flight, tc.driving, 300); ok {
				t.Error("expected not computable")
			}
		})
	}
}

func TestPlanRemindersCreatesBoth(t *testing.T) {
	now := time.Unix(1_699_900_000, 0)
	f := reminderTestFlight(1_700_000_000)

	changes, clear := planReminders(nil, f, 1800, 300, now)
	if clear {
		t.Fatal("did not expect a clear")
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(changes))
	}
	for _, c := range changes {
		if c.insert == nil {
			t.Fatal("expected inserts only")
		}
		if c.insert.Sent {
			t.Errorf("future %s reminder should not be pre-sent", c.insert.Kind)
		}
	}
	if changes[0].insert.Kind != constants.ReminderLeaveSoon ||
		changes[1].insert.Kind != constants.ReminderLeaveNow {
		t.Error("expected leave-soon then leave-now")
	}
}

func TestPlanRemindersPastLeaveSoonPreSent(t *testing.T) {
	// Arrival is close enough that the leave-soon moment already passed.
	f := reminderTestFlight(1_700_000_000)
	now := time.Unix(f.EstimatedArrivalTime-2000, 0)

	changes, _ := planReminders(nil, f, 1800, 300, now)
	if len(changes) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(changes))
	}
	if !changes[0].insert.Sent {
		t.Error("past leave-soon should be created pre-marked sent")
	}
	if changes[1].insert.Sent {
		t.Error("future leave-now should not be pre-sent")
	}
}

func TestPlanRemindersMovesUnsentOnly(t *testing.T) {
	now := time.Unix(1_699_900_000, 0)
	f := reminderTestFlight(1_700_000_000)
	leaveSoon, leaveNow, _ := ComputeReminderTimes(f, 1800, 300)

	existing := []entities.FlightReminder{
		{ID: 1, FlightID: f.FlightID, Kind: constants.ReminderLeaveSoon, FireTime: leaveSoon - 600, Sent: true},
		{ID: 2, FlightID: f.FlightID, Kind: constants.ReminderLeaveNow, FireTime: leaveNow - 600},
	}

	changes, clear := planReminders(existing, f, 1800, 300, now)
	if clear {
		t.Fatal("did not expect a clear")
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].update == nil || changes[0].update.ID != 2 {
		t.Fatal("expected the unsent leave-now row to move")
	}
	if changes[0].update.FireTime != leaveNow {
		t.Errorf("fire time = %d, want %d", changes[0].update.FireTime, leaveNow)
	}
}

func TestPlanRemindersNoopWhenUnchanged(t *testing.T) {
	now := time.Unix(1_699_900_000, 0)
	f := reminderTestFlight(1_700_000_000)
	leaveSoon, leaveNow, _ := ComputeReminderTimes(f, 1800, 300)

	existing := []entities.FlightReminder{
		{ID: 1, FlightID: f.FlightID, Kind: constants.ReminderLeaveSoon, FireTime: leaveSoon},
		{ID: 2, FlightID: f.FlightID, Kind: constants.ReminderLeaveNow, FireTime: leaveNow},
	}

	changes, clear := planReminders(existing, f, 1800, 300, now)
	if clear || len(changes) != 0 {
		t.Fatalf("expected no changes, got %d (clear=%v)", len(changes), clear)
	}
}

func TestPlanRemindersCanceledClears(t *testing.T) {
	now := time.Unix(1_699_900_000, 0)
	f := reminderTestFlight(1_700_000_000)
	f.ActualDepartureTime = -1

	changes, clear := planReminders(nil, f, 1800, 300, now)
	if !clear {
		t.Fatal("canceled flight should clear pending reminders")
	}
	if len(changes) != 0 {
		t.Fatal("clear should carry no other changes")
	}
}

func TestPlanRemindersMissingDrivingLeavesRowsAlone(t *testing.T) {
	now := time.Unix(1_699_900_000, 0)
	f := reminderTestFlight(1_700_000_000)

	existing := []entities.FlightReminder{
		{ID: 1, FlightID: f.FlightID, Kind: constants.ReminderLeaveNow, FireTime: 123},
	}
	changes, clear := planReminders(existing, f, 0, 300, now)
	if clear || len(changes) != 0 {
		t.Fatal("without a driving time the existing rows must be left alone")
	}
}
