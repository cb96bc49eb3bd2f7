package journey

import "time"

// Status 行程状态枚举（持久化为字符串）。
type Status string

const (
	StatusStopped   Status = "stopped"   // 停靠/暂停（新建车辆未分配司机时也是该状态）
	StatusRunning   Status = "running"   // 行程进行中
	StatusAccident  Status = "accident"  // 事故锁定，需显式解除
	StatusCompleted Status = "completed" // 已完成（终态，只读）
)

// VehicleRecord 是 vehicle_records 表的 GORM 模型：一辆车当前行程的全部可变状态。
// Status 字段只允许 Service 经由状态机修改；遥测只改坐标/进度/到达时间。
type VehicleRecord struct {
	ID       string `gorm:"primaryKey;size:36"`
	Status   Status `gorm:"type:varchar(16);index;not null"`
	DriverID string `gorm:"index;size:36"` // 为空表示未绑定司机
	RouteID  string `gorm:"index;size:36"`

	Capacity   int `gorm:"not null"`
	Passengers int `gorm:"not null;default:0"`
	// 超员只做标记不拒绝：遥测口径的载客数允许短时超过额定容量
	OverCapacity bool `gorm:"not null;default:false"`

	StartLat   float64 `gorm:"not null"`
	StartLng   float64 `gorm:"not null"`
	EndLat     float64 `gorm:"not null"`
	EndLng     float64 `gorm:"not null"`
	CurrentLat float64
	CurrentLng float64

	// 行程完成百分比 [0,100]
	Progress float64 `gorm:"not null;default:0"`

	DepartureTime *time.Time // 行程开始时间
	ArrivalTime   *time.Time // 预计到达时间（估算值，每次进度更新重算，不是承诺）

	HasAccident bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Active 判断是否处于活跃行程：status != stopped。
// 注意 completed 在归档前也算活跃（司机独占校验按此口径）。
func (r *VehicleRecord) Active() bool {
	return r != nil && r.Status != StatusStopped
}
