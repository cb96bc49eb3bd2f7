package journey

import "time"

// AllowTransition 定义行程状态机允许的流转关系（有向图）。
// accident 只能回到 stopped（clearAccident），不会自动恢复 running。
var AllowTransition = map[Status][]Status{
	StatusStopped:  {StatusRunning, StatusAccident, StatusCompleted},
	StatusRunning:  {StatusStopped, StatusAccident, StatusCompleted},
	StatusAccident: {StatusStopped},
	// 终态：completed 不允许再流转
	StatusCompleted: {},
}

// CanTransition 判断 from -> to 是否是允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Start 开始行程：status -> running。
// DepartureTime 只在首次开始时写入（可能已被更早的排班环节设置）。
func Start(rec *VehicleRecord, now time.Time) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	if rec.HasAccident {
		return ErrAccidentBlocksStart
	}
	if !CanTransition(rec.Status, StatusRunning) {
		return ErrInvalidTransition
	}
	rec.Status = StatusRunning
	if rec.DepartureTime == nil {
		t := now
		rec.DepartureTime = &t
	}
	rec.ArrivalTime = Estimate(rec.DepartureTime, rec.Progress, now)
	return nil
}

// Stop 暂停行程：status -> stopped。
// DepartureTime / Progress / ArrivalTime 原样保留（停靠是暂停，不是重置）。
// 事故状态下必须先 ClearAccident。
func Stop(rec *VehicleRecord) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	if rec.Status == StatusAccident {
		return ErrInvalidTransition
	}
	rec.Status = StatusStopped
	return nil
}

// Restart 中途停靠后重新出发：原 DepartureTime 已不是有效的耗时基线，
// 因此重置出发时间，并用默认行程时长折算剩余部分估 ETA。
func Restart(rec *VehicleRecord, now time.Time, defaultJourneyMinutes int) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	if rec.HasAccident {
		return ErrAccidentBlocksRestart
	}
	if !CanTransition(rec.Status, StatusRunning) {
		return ErrInvalidTransition
	}
	rec.Status = StatusRunning
	t := now
	rec.DepartureTime = &t
	rec.ArrivalTime = EstimateOnRestart(rec.Progress, now, defaultJourneyMinutes)
	return nil
}

// ReportAccident 标记事故：任何非终态都可以（停靠中的车同样可能被撞）。
func ReportAccident(rec *VehicleRecord) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	rec.HasAccident = true
	rec.Status = StatusAccident
	return nil
}

// ClearAccident 解除事故标记：status 回到 stopped。
// 不自动恢复 running，恢复行驶需要显式 Start/Restart。
func ClearAccident(rec *VehicleRecord) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	rec.HasAccident = false
	rec.Status = StatusStopped
	return nil
}

// Complete 收车：status -> completed，progress 强制为 100，到达时间定格为 now。
// 对已完成的记录再次调用返回 ErrJourneyCompleted，不会发生静默的二次流转。
func Complete(rec *VehicleRecord, now time.Time) error {
	if rec.Status == StatusCompleted {
		return ErrJourneyCompleted
	}
	if rec.HasAccident {
		return ErrCannotCompleteWithAccident
	}
	rec.Status = StatusCompleted
	rec.Progress = 100
	t := now
	rec.ArrivalTime = &t
	return nil
}

// SetPassengers 更新载客数。负数拒绝；超过容量接受但置 OverCapacity 标记，
// 返回值告知调用方本次是否超员（用于打点/告警）。
func SetPassengers(rec *VehicleRecord, count int) (overCapacity bool, err error) {
	if rec.Status == StatusCompleted {
		return false, ErrJourneyCompleted
	}
	if count < 0 {
		return false, ErrNegativePassengers
	}
	rec.Passengers = count
	rec.OverCapacity = count > rec.Capacity
	return rec.OverCapacity, nil
}
