package journey

import (
	"testing"
	"time"
)

func TestEstimateLinearPace(t *testing.T) {
	// 30 分钟走完 50%，剩下 50% 还要 30 分钟
	dep := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	now := dep.Add(30 * time.Minute)

	got := Estimate(&dep, 50, now)
	if got == nil {
		t.Fatalf("expected estimate, got nil")
	}
	want := now.Add(30 * time.Minute)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEstimateNilWithoutDeparture(t *testing.T) {
	if got := Estimate(nil, 50, time.Now()); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestEstimateNilAtZeroProgress(t *testing.T) {
	dep := time.Now().Add(-10 * time.Minute)
	if got := Estimate(&dep, 0, time.Now()); got != nil {
		t.Fatalf("expected nil at zero progress, got %v", got)
	}
}

func TestEstimateArrivedPinsNow(t *testing.T) {
	dep := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	now := dep.Add(45 * time.Minute)
	got := Estimate(&dep, 100, now)
	if got == nil || !got.Equal(now) {
		t.Fatalf("expected now, got %v", got)
	}
}

func TestEstimateRoundsHalfUpToMinute(t *testing.T) {
	dep := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// 剩余 23 分 20 秒 -> 23 分
	now := dep.Add(10 * time.Minute)
	got := Estimate(&dep, 30, now)
	if want := now.Add(23 * time.Minute); got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// 剩余 1 分 30 秒 -> 进位到 2 分
	now = dep.Add(6 * time.Minute)
	got = Estimate(&dep, 80, now)
	if want := now.Add(2 * time.Minute); got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEstimateOnRestart(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		progress float64
		minutes  int
		want     time.Duration
	}{
		{40, 60, 36 * time.Minute},
		{0, 60, 60 * time.Minute},
		{100, 60, 0},
		{-5, 60, 60 * time.Minute}, // 越界进度收口到 [0,100]
		{150, 60, 0},
		{50, 90, 45 * time.Minute},
	}
	for _, c := range cases {
		got := EstimateOnRestart(c.progress, now, c.minutes)
		if got == nil {
			t.Fatalf("progress=%v: expected estimate, got nil", c.progress)
		}
		if want := now.Add(c.want); !got.Equal(want) {
			t.Fatalf("progress=%v minutes=%d: expected %v, got %v", c.progress, c.minutes, want, got)
		}
	}
}
