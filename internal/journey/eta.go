package journey

import (
	"math"
	"time"
)

// Estimate 依据已用时长与完成比例线性外推预计到达时间。
// 纯函数，"now" 由调用方注入，便于测试。
//
// 刻意保持朴素的线性外推：不做平滑，也不叠加路况补偿。行程早期进度很小时
// ETA 抖动大，这是下游展示侧已经依赖的既定行为，不要在这里“修”。
//
// 返回 nil 表示暂无估算依据（未出发，或进度为 0 无法外推）。
func Estimate(departure *time.Time, progress float64, now time.Time) *time.Time {
	if departure == nil {
		return nil
	}
	if progress >= 100 {
		t := now
		return &t
	}
	if progress <= 0 {
		// 没有外推依据，同时避免除零
		return nil
	}
	elapsed := now.Sub(*departure)
	ratePerPercent := float64(elapsed) / progress
	remaining := time.Duration((100 - progress) * ratePerPercent)
	t := now.Add(roundToMinute(remaining))
	return &t
}

// EstimateOnRestart 用于中途停靠后重新出发：原出发时间基线已失效，
// 按配置的默认行程时长折算剩余比例。
func EstimateOnRestart(progress float64, now time.Time, defaultJourneyMinutes int) *time.Time {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	remainingFraction := (100 - progress) / 100
	remaining := time.Duration(remainingFraction * float64(defaultJourneyMinutes) * float64(time.Minute))
	t := now.Add(roundToMinute(remaining))
	return &t
}

// roundToMinute 将剩余时长四舍五入（half-up）到分钟粒度。
func roundToMinute(d time.Duration) time.Duration {
	minutes := math.Floor(d.Minutes() + 0.5)
	return time.Duration(minutes) * time.Minute
}
