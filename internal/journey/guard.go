package journey

// ActiveJourneyLookup 查询某司机当前的活跃行程，没有则返回 (nil, nil)。
// 由调用方提供，guard 本身不接触持久化。
type ActiveJourneyLookup func(driverID string) (*VehicleRecord, error)

// TryAssign 校验司机独占不变量：一个司机同一时刻最多挂在一条活跃行程上。
//
// 两条拒绝规则：
//   - 目标车辆处于活跃行程且已绑定另一位司机（不允许不经解绑就顶替）
//   - 该司机在另一辆车上还有活跃行程
//
// 通过校验不产生任何写入；实际绑定由 Service 在分配锁内完成，
// 保证两个并发的同司机分配请求不会都成功。
func TryAssign(driverID, vehicleID string, target *VehicleRecord, lookup ActiveJourneyLookup) error {
	if target != nil && target.Active() && target.DriverID != "" && target.DriverID != driverID {
		return ErrVehicleHasDriver
	}
	if lookup == nil {
		return nil
	}
	other, err := lookup(driverID)
	if err != nil {
		return err
	}
	if other != nil && other.Status != StatusStopped && other.ID != vehicleID {
		return ErrDriverBusy
	}
	return nil
}

// Unassign 解除司机绑定。任何状态都允许：司机与行程生命周期独立，
// 行驶中解绑并不会让车停下来。
func Unassign(rec *VehicleRecord) {
	rec.DriverID = ""
}
