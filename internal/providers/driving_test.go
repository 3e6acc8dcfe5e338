package providers

import (
	"context"
	"testing"

	"just-landed/tracker/internal/common"
)

type fakeDrivingSource struct {
	name    string
	seconds int64
	err     error
	calls   int
}

func (f *fakeDrivingSource) Name() string { return f.name }

func (f *fakeDrivingSource) DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error) {
	f.calls++
	return f.seconds, f.err
}

func TestDrivingTimeChain_FirstSourceWins(t *testing.T) {
	first := &fakeDrivingSource{name: "first", seconds: 1800}
	second := &fakeDrivingSource{name: "second", seconds: 2400}

	chain := NewDrivingTimeChain(first, second)
	seconds, err := chain.DrivingTime(context.Background(), 37.77, -122.42, 37.62, -122.38)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if seconds != 1800 {
		t.Errorf("Expected 1800 seconds, got %d", seconds)
	}
	if second.calls != 0 {
		t.Error("Second source should not be consulted when the first succeeds")
	}
}

func TestDrivingTimeChain_NoRouteStopsChain(t *testing.T) {
	first := &fakeDrivingSource{name: "first", err: common.ErrNoRoute()}
	second := &fakeDrivingSource{name: "second", seconds: 2400}

	chain := NewDrivingTimeChain(first, second)
	_, err := chain.DrivingTime(context.Background(), 37.77, -122.42, 37.62, -122.38)
	if !common.IsCode(err, common.CodeNoRoute) {
		t.Fatalf("Expected NO_DRIVING_ROUTE, got %v", err)
	}
	if second.calls != 0 {
		t.Error("No-route is authoritative; second source should not be consulted")
	}
}

func TestDrivingTimeChain_FallsBackOnFailure(t *testing.T) {
	first := &fakeDrivingSource{name: "first", err: common.ErrQuotaExceeded("first")}
	second := &fakeDrivingSource{name: "second", seconds: 2400}

	chain := NewDrivingTimeChain(first, second)
	seconds, err := chain.DrivingTime(context.Background(), 37.77, -122.42, 37.62, -122.38)
	if err != nil {
		t.Fatalf("Expected fallback success, got %v", err)
	}
	if seconds != 2400 {
		t.Errorf("Expected 2400 seconds from fallback, got %d", seconds)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("Expected both sources consulted once, got %d and %d", first.calls, second.calls)
	}
}

func TestDrivingTimeChain_LastErrorPropagates(t *testing.T) {
	first := &fakeDrivingSource{name: "first", err: common.ErrQuotaExceeded("first")}
	second := &fakeDrivingSource{name: "second", err: common.ErrUnavailable(nil)}

	chain := NewDrivingTimeChain(first, second)
	_, err := chain.DrivingTime(context.Background(), 37.77, -122.42, 37.62, -122.38)
	if !common.IsCode(err, common.CodeUnavailable) {
		t.Errorf("Expected the last source's error, got %v", err)
	}
}
