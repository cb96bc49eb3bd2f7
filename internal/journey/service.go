package journey

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FleetPulse/FleetPulse/internal/common/logger"
	"github.com/FleetPulse/FleetPulse/internal/metrics"
)

// Notifier 司机分配通知端口：尽力而为。失败只记日志和打点，绝不让状态流转失败。
type Notifier interface {
	NotifyAssignment(ctx context.Context, driverID, vehicleID, routeID string) error
}

// IncidentSignal 线路扰动查询端口：只读，只用于给读取结果加“可能延误”标记，
// 永远不会阻塞任何状态流转。
type IncidentSignal interface {
	HasActiveDisruption(ctx context.Context, routeID string, lat, lng float64) (bool, error)
}

// DriverDirectory 司机名录查询。司机档案的增删改属于后台管理，不在本服务内。
type DriverDirectory interface {
	Exists(ctx context.Context, driverID string) (bool, error)
}

// Service 是 VehicleRecord 的唯一写入方：
//   - 每辆车一把锁，单车所有操作串行，保证不变量检查与写入原子
//   - 司机分配额外经过全局分配锁（跨车辆一致性点），两个并发的同司机
//     分配请求不可能都成功
//   - 位置/进度计算交给 tracker，时间计算交给 estimator，状态流转交给状态机
type Service struct {
	store    Store
	drivers  DriverDirectory
	notifier Notifier
	incident IncidentSignal
	metrics  *metrics.Collector
	log      logger.Logger

	defaultJourneyMinutes int
	notifyTimeout         time.Duration

	nowFn func() time.Time

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // vehicleID -> 单车操作锁

	assignMu sync.Mutex
}

// ServiceOptions 组装 Service 的可选依赖；为 nil 的端口按“不存在”处理。
type ServiceOptions struct {
	Drivers  DriverDirectory
	Notifier Notifier
	Incident IncidentSignal
	Metrics  *metrics.Collector
	Logger   logger.Logger

	DefaultJourneyMinutes int // restart 时的默认行程时长，<=0 取 60
	NotifyTimeout         time.Duration
}

func NewService(store Store, opts ServiceOptions) *Service {
	if opts.DefaultJourneyMinutes <= 0 {
		opts.DefaultJourneyMinutes = 60
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 3 * time.Second
	}
	return &Service{
		store:                 store,
		drivers:               opts.Drivers,
		notifier:              opts.Notifier,
		incident:              opts.Incident,
		metrics:               opts.Metrics,
		log:                   opts.Logger,
		defaultJourneyMinutes: opts.DefaultJourneyMinutes,
		notifyTimeout:         opts.NotifyTimeout,
		nowFn:                 time.Now,
		locks:                 make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(vehicleID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	mu, ok := s.locks[vehicleID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[vehicleID] = mu
	}
	return mu
}

// CreateInput 创建行程记录的入参。
type CreateInput struct {
	RouteID  string
	Capacity int
	StartLat float64
	StartLng float64
	EndLat   float64
	EndLng   float64
}

// Create 新建车辆行程记录：初始 stopped、进度 0、无乘客、无事故。
func (s *Service) Create(ctx context.Context, in CreateInput) (*VehicleRecord, error) {
	if in.Capacity <= 0 {
		return nil, s.countReject(ErrInvalidCapacity)
	}
	if !validCoord(in.StartLat, in.StartLng) || !validCoord(in.EndLat, in.EndLng) {
		return nil, s.countReject(ErrInvalidCoordinate)
	}

	rec := &VehicleRecord{
		ID:         uuid.NewString(),
		Status:     StatusStopped,
		RouteID:    strings.TrimSpace(in.RouteID),
		Capacity:   in.Capacity,
		StartLat:   in.StartLat,
		StartLng:   in.StartLng,
		EndLat:     in.EndLat,
		EndLng:     in.EndLng,
		CurrentLat: in.StartLat,
		CurrentLng: in.StartLng,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AssignDriver 绑定司机。锁序：先取车辆锁，再取分配锁（只有分配路径持双锁）。
func (s *Service) AssignDriver(ctx context.Context, vehicleID, driverID string) (*VehicleRecord, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, s.countReject(ErrDriverNotFound)
	}

	mu := s.lockFor(vehicleID)
	mu.Lock()
	defer mu.Unlock()
	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	if s.drivers != nil {
		ok, err := s.drivers.Exists(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, s.countReject(ErrDriverNotFound)
		}
	}

	rec, err := s.store.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, s.countReject(err)
	}
	if rec.Status == StatusCompleted {
		return nil, s.countReject(ErrJourneyCompleted)
	}

	if err := TryAssign(driverID, vehicleID, rec, func(d string) (*VehicleRecord, error) {
		return s.store.FindActiveByDriver(ctx, d)
	}); err != nil {
		return nil, s.countReject(err)
	}

	rec.DriverID = driverID
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AssignmentsTotal.Inc()
	}
	s.notifyAsync(driverID, rec.ID, rec.RouteID)
	return rec, nil
}

// UnassignDriver 解绑司机；任何状态都允许，解绑不影响行程本身。
func (s *Service) UnassignDriver(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	return s.mutate(ctx, vehicleID, "", func(rec *VehicleRecord) error {
		Unassign(rec)
		return nil
	})
}

func (s *Service) Start(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	now := s.nowFn()
	return s.mutate(ctx, vehicleID, "start", func(rec *VehicleRecord) error {
		return Start(rec, now)
	})
}

func (s *Service) Stop(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	return s.mutate(ctx, vehicleID, "stop", func(rec *VehicleRecord) error {
		return Stop(rec)
	})
}

func (s *Service) Restart(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	now := s.nowFn()
	return s.mutate(ctx, vehicleID, "restart", func(rec *VehicleRecord) error {
		return Restart(rec, now, s.defaultJourneyMinutes)
	})
}

func (s *Service) ReportAccident(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	return s.mutate(ctx, vehicleID, "accident", func(rec *VehicleRecord) error {
		return ReportAccident(rec)
	})
}

func (s *Service) ClearAccident(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	return s.mutate(ctx, vehicleID, "clear_accident", func(rec *VehicleRecord) error {
		return ClearAccident(rec)
	})
}

func (s *Service) Complete(ctx context.Context, vehicleID string) (*VehicleRecord, error) {
	now := s.nowFn()
	return s.mutate(ctx, vehicleID, "complete", func(rec *VehicleRecord) error {
		return Complete(rec, now)
	})
}

// ApplyTelemetry 应用一条遥测（坐标 + 可选进度）。按到达顺序逐条应用，不做乱序缓冲。
func (s *Service) ApplyTelemetry(ctx context.Context, vehicleID string, lat, lng float64, progress *float64) (*VehicleRecord, error) {
	now := s.nowFn()
	rec, err := s.mutate(ctx, vehicleID, "", func(rec *VehicleRecord) error {
		return ApplyPosition(rec, lat, lng, progress, now)
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.TelemetryDropped.Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TelemetryApplied.Inc()
	}
	return rec, nil
}

// UpdateProgress 纯进度更新（无坐标）。
func (s *Service) UpdateProgress(ctx context.Context, vehicleID string, progress float64) (*VehicleRecord, error) {
	now := s.nowFn()
	return s.mutate(ctx, vehicleID, "", func(rec *VehicleRecord) error {
		return ApplyProgress(rec, progress, now)
	})
}

// UpdatePassengers 更新载客数；超员接受但告警。
func (s *Service) UpdatePassengers(ctx context.Context, vehicleID string, count int) (*VehicleRecord, error) {
	var over bool
	rec, err := s.mutate(ctx, vehicleID, "", func(rec *VehicleRecord) error {
		var err error
		over, err = SetPassengers(rec, count)
		return err
	})
	if err != nil {
		return nil, err
	}
	if over {
		if s.metrics != nil {
			s.metrics.OverCapacityEvents.Inc()
		}
		if s.log != nil {
			s.log.WithFields(map[string]interface{}{
				"vehicle_id": vehicleID,
				"passengers": count,
				"capacity":   rec.Capacity,
			}).Warn("passenger count over capacity")
		}
	}
	return rec, nil
}

// RecordView 读取结果：记录本身 + 线路扰动的参考性延误标记。
type RecordView struct {
	Record        *VehicleRecord
	PossibleDelay bool
}

// Get 读取当前记录。扰动查询失败时静默降级为无标记（端口是参考性的）。
func (s *Service) Get(ctx context.Context, vehicleID string) (*RecordView, error) {
	rec, err := s.store.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, s.countReject(err)
	}
	view := &RecordView{Record: rec}
	if s.incident != nil && rec.Status == StatusRunning {
		delayed, err := s.incident.HasActiveDisruption(ctx, rec.RouteID, rec.CurrentLat, rec.CurrentLng)
		if err != nil {
			if s.log != nil {
				s.log.Warnf("incident signal lookup failed for route %s: %v", rec.RouteID, err)
			}
		} else {
			view.PossibleDelay = delayed
		}
	}
	return view, nil
}

func (s *Service) List(ctx context.Context, status Status, offset, limit int) ([]VehicleRecord, int64, error) {
	return s.store.List(ctx, status, offset, limit)
}

// mutate 在单车锁内执行 加载 -> 业务变更 -> 落库。fn 返回错误时不落库，
// 保证失败调用不产生任何部分写入。
func (s *Service) mutate(ctx context.Context, vehicleID, op string, fn func(*VehicleRecord) error) (*VehicleRecord, error) {
	mu := s.lockFor(vehicleID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.store.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, s.countReject(err)
	}
	if err := fn(rec); err != nil {
		return nil, s.countReject(err)
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	if op != "" && s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(op).Inc()
	}
	return rec, nil
}

// notifyAsync 异步通知司机，带调用级超时。失败吞掉，只留日志和打点。
func (s *Service) notifyAsync(driverID, vehicleID, routeID string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyAssignment(ctx, driverID, vehicleID, routeID); err != nil {
			if s.metrics != nil {
				s.metrics.NotifyFailures.Inc()
			}
			if s.log != nil {
				s.log.Warnf("assignment notification failed driver=%s vehicle=%s: %v", driverID, vehicleID, err)
			}
		}
	}()
}

// countReject 按错误类别打拒绝指标，原样透传错误。
func (s *Service) countReject(err error) error {
	if err == nil || s.metrics == nil {
		return err
	}
	switch {
	case IsValidation(err):
		s.metrics.RejectionsTotal.WithLabelValues("validation").Inc()
	case IsInvariant(err):
		s.metrics.RejectionsTotal.WithLabelValues("invariant").Inc()
	case IsNotFound(err):
		s.metrics.RejectionsTotal.WithLabelValues("not_found").Inc()
	}
	return err
}

func validCoord(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
