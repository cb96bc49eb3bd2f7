package journey

import (
	"errors"
	"testing"
)

func noActive(string) (*VehicleRecord, error) { return nil, nil }

func TestTryAssignVehicleTakenByOther(t *testing.T) {
	target := &VehicleRecord{ID: "v1", Status: StatusRunning, DriverID: "d1"}
	err := TryAssign("d2", "v1", target, noActive)
	if !errors.Is(err, ErrVehicleHasDriver) {
		t.Fatalf("expected ErrVehicleHasDriver, got %v", err)
	}
}

func TestTryAssignSameDriverReassign(t *testing.T) {
	target := &VehicleRecord{ID: "v1", Status: StatusRunning, DriverID: "d1"}
	lookup := func(string) (*VehicleRecord, error) { return target, nil }
	if err := TryAssign("d1", "v1", target, lookup); err != nil {
		t.Fatalf("expected same-driver reassign allowed, got %v", err)
	}
}

func TestTryAssignStoppedVehicleWithOldDriver(t *testing.T) {
	// 停靠中的车即便还挂着上一位司机，也允许被接手
	target := &VehicleRecord{ID: "v1", Status: StatusStopped, DriverID: "d1"}
	if err := TryAssign("d2", "v1", target, noActive); err != nil {
		t.Fatalf("expected assignment to stopped vehicle allowed, got %v", err)
	}
}

func TestTryAssignDriverBusyElsewhere(t *testing.T) {
	other := &VehicleRecord{ID: "v9", Status: StatusRunning, DriverID: "d1"}
	lookup := func(string) (*VehicleRecord, error) { return other, nil }
	target := &VehicleRecord{ID: "v1", Status: StatusStopped}
	if err := TryAssign("d1", "v1", target, lookup); !errors.Is(err, ErrDriverBusy) {
		t.Fatalf("expected ErrDriverBusy, got %v", err)
	}
}

func TestTryAssignLookupError(t *testing.T) {
	boom := errors.New("boom")
	lookup := func(string) (*VehicleRecord, error) { return nil, boom }
	target := &VehicleRecord{ID: "v1", Status: StatusStopped}
	if err := TryAssign("d1", "v1", target, lookup); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error passthrough, got %v", err)
	}
}

func TestUnassign(t *testing.T) {
	rec := &VehicleRecord{ID: "v1", Status: StatusRunning, DriverID: "d1"}
	Unassign(rec)
	if rec.DriverID != "" {
		t.Fatalf("expected driver cleared")
	}
	// 解绑不影响行程状态
	if rec.Status != StatusRunning {
		t.Fatalf("expected status unchanged, got %s", rec.Status)
	}
}
