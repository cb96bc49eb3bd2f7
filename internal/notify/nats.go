package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/FleetPulse/FleetPulse/internal/common/logger"
	"github.com/FleetPulse/FleetPulse/internal/common/middleware"
)

// AssignmentMessage 司机分配通知载荷。实际触达（邮件/短信/推送）由下游消费方完成。
type AssignmentMessage struct {
	DriverID   string    `json:"driverId"`
	VehicleID  string    `json:"vehicleId"`
	RouteID    string    `json:"routeId"`
	AssignedAt time.Time `json:"assignedAt"`
}

// NATSNotifier 把分配通知发到 NATS。整体尽力而为：
// 连接断开自动重连，连续失败走熔断快速失败，调用方不感知也不重试。
type NATSNotifier struct {
	nc      *nats.Conn
	subject string
	breaker *middleware.CircuitBreaker
	log     logger.Logger
}

func NewNATSNotifier(url, subject string, log logger.Logger) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("journey-service-notify"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if log != nil {
				log.Warn("notify nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if log != nil {
				log.Info("notify nats reconnected")
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{
		nc:      nc,
		subject: subject,
		breaker: middleware.NewCircuitBreaker("notify", 5, 30*time.Second),
		log:     log,
	}, nil
}

// NotifyAssignment 发布分配通知。
func (n *NATSNotifier) NotifyAssignment(ctx context.Context, driverID, vehicleID, routeID string) error {
	msg := AssignmentMessage{
		DriverID:   driverID,
		VehicleID:  vehicleID,
		RouteID:    routeID,
		AssignedAt: time.Now(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.breaker.Call(func() error {
		return n.nc.Publish(n.subject, b)
	})
}

func (n *NATSNotifier) Close() {
	if n.nc != nil {
		_ = n.nc.Drain()
		n.nc.Close()
	}
}

// NopNotifier 通知通道不可用时的空实现。
type NopNotifier struct{}

func (NopNotifier) NotifyAssignment(context.Context, string, string, string) error { return nil }
