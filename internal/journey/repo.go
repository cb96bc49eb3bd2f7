package journey

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store 是 Service 依赖的最小持久化接口，方便在测试里用内存实现替换。
type Store interface {
	Create(ctx context.Context, rec *VehicleRecord) error
	Save(ctx context.Context, rec *VehicleRecord) error
	// FindByID 未找到时返回 ErrVehicleNotFound。
	FindByID(ctx context.Context, id string) (*VehicleRecord, error)
	// FindActiveByDriver 返回该司机的活跃行程（status != stopped），没有返回 (nil, nil)。
	FindActiveByDriver(ctx context.Context, driverID string) (*VehicleRecord, error)
	List(ctx context.Context, status Status, offset, limit int) ([]VehicleRecord, int64, error)
}

type Repo struct {
	db *gorm.DB
}

var _ Store = (*Repo)(nil)

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, rec *VehicleRecord) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(rec).Error
}

func (r *Repo) Save(ctx context.Context, rec *VehicleRecord) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(rec).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*VehicleRecord, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rec VehicleRecord
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindActiveByDriver 用 driver_id + status 组合索引查询，替代原来按司机全表线性扫描的做法。
func (r *Repo) FindActiveByDriver(ctx context.Context, driverID string) (*VehicleRecord, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rec VehicleRecord
	err := db.Where("driver_id = ? AND status <> ?", driverID, StatusStopped).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List 支持按状态过滤 + 分页。
func (r *Repo) List(ctx context.Context, status Status, offset, limit int) ([]VehicleRecord, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&VehicleRecord{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []VehicleRecord
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
