package journey

import (
	"errors"
	"testing"
	"time"
)

func runningRecord() *VehicleRecord {
	dep := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return &VehicleRecord{
		ID:            "v1",
		Status:        StatusRunning,
		DepartureTime: &dep,
		CurrentLat:    39.9,
		CurrentLng:    116.4,
		Progress:      10,
	}
}

func TestApplyPositionRejectsBadCoordinate(t *testing.T) {
	for _, c := range []struct{ lat, lng float64 }{
		{91, 116.4},
		{-91, 116.4},
		{39.9, 181},
		{39.9, -181},
	} {
		rec := runningRecord()
		p := 50.0
		err := ApplyPosition(rec, c.lat, c.lng, &p, time.Now())
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("lat=%v lng=%v: expected ErrInvalidCoordinate, got %v", c.lat, c.lng, err)
		}
		// all-or-nothing：进度也不能动
		if rec.CurrentLat != 39.9 || rec.CurrentLng != 116.4 || rec.Progress != 10 {
			t.Fatalf("expected record untouched after rejection")
		}
	}
}

func TestApplyPositionRejectsBadProgress(t *testing.T) {
	for _, p := range []float64{-0.1, 100.1} {
		rec := runningRecord()
		progress := p
		err := ApplyPosition(rec, 40.0, 116.5, &progress, time.Now())
		if !errors.Is(err, ErrInvalidProgress) {
			t.Fatalf("progress=%v: expected ErrInvalidProgress, got %v", p, err)
		}
		if rec.CurrentLat != 39.9 || rec.CurrentLng != 116.4 {
			t.Fatalf("expected coordinates untouched when progress invalid")
		}
	}
}

func TestApplyPositionWithoutProgress(t *testing.T) {
	rec := runningRecord()
	arr := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rec.ArrivalTime = &arr

	if err := ApplyPosition(rec, 40.0, 116.5, nil, time.Now()); err != nil {
		t.Fatalf("ApplyPosition: %v", err)
	}
	if rec.CurrentLat != 40.0 || rec.CurrentLng != 116.5 {
		t.Fatalf("expected coordinates updated")
	}
	// 不带进度就不重算 ETA
	if rec.Progress != 10 || rec.ArrivalTime == nil || !rec.ArrivalTime.Equal(arr) {
		t.Fatalf("expected progress and arrival untouched")
	}
}

func TestApplyPositionRecomputesEta(t *testing.T) {
	rec := runningRecord()
	now := rec.DepartureTime.Add(30 * time.Minute)
	p := 50.0
	if err := ApplyPosition(rec, 40.0, 116.5, &p, now); err != nil {
		t.Fatalf("ApplyPosition: %v", err)
	}
	want := now.Add(30 * time.Minute)
	if rec.ArrivalTime == nil || !rec.ArrivalTime.Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, rec.ArrivalTime)
	}
}

func TestApplyProgressHundredPinsArrival(t *testing.T) {
	rec := runningRecord()
	now := rec.DepartureTime.Add(50 * time.Minute)
	if err := ApplyProgress(rec, 100, now); err != nil {
		t.Fatalf("ApplyProgress: %v", err)
	}
	if rec.ArrivalTime == nil || !rec.ArrivalTime.Equal(now) {
		t.Fatalf("expected arrival pinned to now, got %v", rec.ArrivalTime)
	}
	// 到达不等于收车：状态仍是 running，等显式 Complete
	if rec.Status != StatusRunning {
		t.Fatalf("expected status unchanged, got %s", rec.Status)
	}
}

func TestCompletedRecordRejectsTelemetry(t *testing.T) {
	rec := runningRecord()
	rec.Status = StatusCompleted
	p := 50.0
	if err := ApplyPosition(rec, 40.0, 116.5, &p, time.Now()); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted, got %v", err)
	}
	if err := ApplyProgress(rec, 50, time.Now()); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted, got %v", err)
	}
}
