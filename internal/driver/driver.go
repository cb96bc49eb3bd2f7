package driver

import "time"

// Driver 是 drivers 表的 GORM 模型。司机档案的管理后台在别的服务里，
// journey-service 只在分配时校验司机存在。
type Driver struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:64;not null"`
	LicenseNo string    `gorm:"uniqueIndex;size:32;not null"`
	Phone     string    `gorm:"size:32"`
	Status    string    `gorm:"size:16;not null"` // active / suspended
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
