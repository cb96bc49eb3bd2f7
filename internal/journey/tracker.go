package journey

import "time"

// ApplyPosition 应用一条遥测：更新当前坐标；progress 可选，带了就一并更新并重算 ETA。
// 任何校验失败都不修改记录（单次调用 all-or-nothing）。
func ApplyPosition(rec *VehicleRecord, lat, lng float64, progress *float64, now time.Time) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinate
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return ErrInvalidProgress
	}
	rec.CurrentLat = lat
	rec.CurrentLng = lng
	if progress != nil {
		applyProgress(rec, *progress, now)
	}
	return nil
}

// ApplyProgress 纯进度更新（无坐标），总是触发 ETA 重算。
func ApplyProgress(rec *VehicleRecord, progress float64, now time.Time) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	if progress < 0 || progress > 100 {
		return ErrInvalidProgress
	}
	applyProgress(rec, progress, now)
	return nil
}

// applyProgress 写入进度并重算 ETA。
// progress >= 100 时把 ArrivalTime 定格为 now：几何意义上已经到了，
// 但状态保持不变，直到显式 Complete——“到了”和“收车”刻意解耦。
func applyProgress(rec *VehicleRecord, progress float64, now time.Time) {
	rec.Progress = progress
	if progress >= 100 {
		t := now
		rec.ArrivalTime = &t
		return
	}
	rec.ArrivalTime = Estimate(rec.DepartureTime, progress, now)
}
