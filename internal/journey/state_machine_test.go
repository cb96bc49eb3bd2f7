package journey

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusStopped, StatusRunning) {
		t.Fatalf("expected stopped -> running allowed")
	}
	if !CanTransition(StatusRunning, StatusStopped) {
		t.Fatalf("expected running -> stopped allowed")
	}
	if !CanTransition(StatusAccident, StatusStopped) {
		t.Fatalf("expected accident -> stopped allowed")
	}
	if CanTransition(StatusAccident, StatusRunning) {
		t.Fatalf("expected accident -> running not allowed")
	}
	if CanTransition(StatusCompleted, StatusRunning) {
		t.Fatalf("expected completed -> running not allowed")
	}
}

func TestStartSetsDepartureOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	rec := &VehicleRecord{ID: "v1", Status: StatusStopped}

	if err := Start(rec, now); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.Status != StatusRunning {
		t.Fatalf("expected running, got %s", rec.Status)
	}
	if rec.DepartureTime == nil || !rec.DepartureTime.Equal(now) {
		t.Fatalf("expected departure=now, got %v", rec.DepartureTime)
	}

	// 已有出发时间的不覆盖
	if err := Stop(rec); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	later := now.Add(10 * time.Minute)
	if err := Start(rec, later); err != nil {
		t.Fatalf("Start again: %v", err)
	}
	if !rec.DepartureTime.Equal(now) {
		t.Fatalf("expected departure preserved, got %v", rec.DepartureTime)
	}
}

func TestAccidentGatesStartRestartComplete(t *testing.T) {
	now := time.Now()
	rec := &VehicleRecord{ID: "v1", Status: StatusStopped}
	if err := ReportAccident(rec); err != nil {
		t.Fatalf("ReportAccident: %v", err)
	}
	if rec.Status != StatusAccident || !rec.HasAccident {
		t.Fatalf("expected accident status+flag, got %s %v", rec.Status, rec.HasAccident)
	}

	if err := Start(rec, now); !errors.Is(err, ErrAccidentBlocksStart) {
		t.Fatalf("expected ErrAccidentBlocksStart, got %v", err)
	}
	if err := Restart(rec, now, 60); !errors.Is(err, ErrAccidentBlocksRestart) {
		t.Fatalf("expected ErrAccidentBlocksRestart, got %v", err)
	}
	if err := Complete(rec, now); !errors.Is(err, ErrCannotCompleteWithAccident) {
		t.Fatalf("expected ErrCannotCompleteWithAccident, got %v", err)
	}

	if err := ClearAccident(rec); err != nil {
		t.Fatalf("ClearAccident: %v", err)
	}
	if rec.Status != StatusStopped || rec.HasAccident {
		t.Fatalf("expected stopped without accident, got %s %v", rec.Status, rec.HasAccident)
	}
	// 解除事故后不会自动恢复行驶，需要显式 Start/Restart
	if err := Start(rec, now); err != nil {
		t.Fatalf("Start after clear: %v", err)
	}
}

func TestStopIsPauseNotReset(t *testing.T) {
	dep := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	arr := dep.Add(time.Hour)
	rec := &VehicleRecord{
		ID:            "v1",
		Status:        StatusRunning,
		DepartureTime: &dep,
		ArrivalTime:   &arr,
		Progress:      42,
	}
	if err := Stop(rec); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.Status != StatusStopped {
		t.Fatalf("expected stopped, got %s", rec.Status)
	}
	if rec.Progress != 42 || rec.DepartureTime == nil || rec.ArrivalTime == nil {
		t.Fatalf("expected progress/departure/arrival retained")
	}
}

func TestStopBlockedDuringAccident(t *testing.T) {
	rec := &VehicleRecord{ID: "v1", Status: StatusAccident, HasAccident: true}
	if err := Stop(rec); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRestartResetsDepartureBaseline(t *testing.T) {
	oldDep := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	now := oldDep.Add(3 * time.Hour)
	rec := &VehicleRecord{
		ID:            "v1",
		Status:        StatusStopped,
		DepartureTime: &oldDep,
		Progress:      40,
	}
	if err := Restart(rec, now, 60); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if rec.Status != StatusRunning {
		t.Fatalf("expected running, got %s", rec.Status)
	}
	if !rec.DepartureTime.Equal(now) {
		t.Fatalf("expected departure reset to now, got %v", rec.DepartureTime)
	}
	want := now.Add(36 * time.Minute)
	if rec.ArrivalTime == nil || !rec.ArrivalTime.Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, rec.ArrivalTime)
	}
}

func TestCompleteTerminal(t *testing.T) {
	now := time.Now()
	rec := &VehicleRecord{ID: "v1", Status: StatusRunning, Progress: 87}
	if err := Complete(rec, now); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if rec.Status != StatusCompleted || rec.Progress != 100 {
		t.Fatalf("expected completed with progress 100, got %s %v", rec.Status, rec.Progress)
	}
	if rec.ArrivalTime == nil || !rec.ArrivalTime.Equal(now) {
		t.Fatalf("expected arrival=now, got %v", rec.ArrivalTime)
	}

	// 终态：任何再流转都被拒绝，不存在静默的二次 complete
	if err := Complete(rec, now); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted, got %v", err)
	}
	if err := Start(rec, now); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted on start, got %v", err)
	}
	if err := ReportAccident(rec); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted on accident, got %v", err)
	}
}

func TestReportAccidentWhileStopped(t *testing.T) {
	// 停靠中的车也可能被撞
	rec := &VehicleRecord{ID: "v1", Status: StatusStopped}
	if err := ReportAccident(rec); err != nil {
		t.Fatalf("ReportAccident: %v", err)
	}
	if rec.Status != StatusAccident {
		t.Fatalf("expected accident, got %s", rec.Status)
	}
}

func TestSetPassengers(t *testing.T) {
	rec := &VehicleRecord{ID: "v1", Status: StatusRunning, Capacity: 50}

	if _, err := SetPassengers(rec, -1); !errors.Is(err, ErrNegativePassengers) {
		t.Fatalf("expected ErrNegativePassengers, got %v", err)
	}
	if rec.Passengers != 0 {
		t.Fatalf("expected no mutation on rejection")
	}

	over, err := SetPassengers(rec, 48)
	if err != nil || over {
		t.Fatalf("expected in-capacity accepted, got over=%v err=%v", over, err)
	}

	// 超员接受但置标记
	over, err = SetPassengers(rec, 55)
	if err != nil {
		t.Fatalf("SetPassengers over capacity: %v", err)
	}
	if !over || !rec.OverCapacity || rec.Passengers != 55 {
		t.Fatalf("expected over-capacity flagged, got over=%v flag=%v count=%d", over, rec.OverCapacity, rec.Passengers)
	}

	// 回落后标记清除
	over, err = SetPassengers(rec, 30)
	if err != nil || over || rec.OverCapacity {
		t.Fatalf("expected flag cleared, got over=%v flag=%v err=%v", over, rec.OverCapacity, err)
	}
}

// 完整走一遍典型行程：建车 -> 出发 -> 进度 -> 事故 -> 解除 -> 重新出发。
func TestLifecycleScenario(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	rec := &VehicleRecord{ID: "v1", Status: StatusStopped, Capacity: 50}

	if err := Start(rec, now); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.Status != StatusRunning {
		t.Fatalf("expected running, got %s", rec.Status)
	}

	now = now.Add(15 * time.Minute)
	if err := ApplyProgress(rec, 25, now); err != nil {
		t.Fatalf("ApplyProgress: %v", err)
	}
	if rec.ArrivalTime == nil {
		t.Fatalf("expected arrival recomputed")
	}

	if err := ReportAccident(rec); err != nil {
		t.Fatalf("ReportAccident: %v", err)
	}
	if err := Start(rec, now); !errors.Is(err, ErrAccidentBlocksStart) {
		t.Fatalf("expected ErrAccidentBlocksStart, got %v", err)
	}
	if err := ClearAccident(rec); err != nil {
		t.Fatalf("ClearAccident: %v", err)
	}
	if rec.Status != StatusStopped || rec.HasAccident {
		t.Fatalf("expected stopped without accident")
	}
	if err := Restart(rec, now, 60); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if rec.Status != StatusRunning {
		t.Fatalf("expected running after restart, got %s", rec.Status)
	}
}
