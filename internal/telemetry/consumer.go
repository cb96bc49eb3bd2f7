package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/FleetPulse/FleetPulse/internal/common/logger"
	"github.com/FleetPulse/FleetPulse/internal/common/middleware"
	"github.com/FleetPulse/FleetPulse/internal/journey"
	"github.com/FleetPulse/FleetPulse/internal/metrics"
)

// PositionMessage 车载终端上报的一条位置消息。progress 可选。
type PositionMessage struct {
	VehicleID  string    `json:"vehicleId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Progress   *float64  `json:"progress,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Consumer 订阅遥测主题，把位置消息逐条灌进行程引擎。
// 单个 subscription 的回调按消息到达顺序串行执行，天然满足
// “逐车按到达顺序应用、不做乱序缓冲”的要求。
type Consumer struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	svc     *journey.Service
	limiter middleware.RateLimiter
	metrics *metrics.Collector
	log     logger.Logger
}

func NewConsumer(url, subject string, svc *journey.Service, limiter middleware.RateLimiter, m *metrics.Collector, log logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(url,
		nats.Name("journey-service-telemetry"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if log != nil {
				log.Warn("telemetry nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if log != nil {
				log.Info("telemetry nats reconnected")
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		nc:      nc,
		subject: subject,
		svc:     svc,
		limiter: limiter,
		metrics: m,
		log:     log,
	}, nil
}

// Start 开始订阅。
func (c *Consumer) Start() error {
	sub, err := c.nc.Subscribe(c.subject, c.handle)
	if err != nil {
		return err
	}
	c.sub = sub
	if c.log != nil {
		c.log.Infof("telemetry consumer subscribed to %s", c.subject)
	}
	return nil
}

func (c *Consumer) handle(m *nats.Msg) {
	if c.limiter != nil && !c.limiter.Allow() {
		if c.metrics != nil {
			c.metrics.TelemetryDropped.Inc()
		}
		return
	}

	var msg PositionMessage
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		if c.metrics != nil {
			c.metrics.TelemetryDropped.Inc()
		}
		if c.log != nil {
			c.log.Warnf("drop malformed telemetry on %s: %v", m.Subject, err)
		}
		return
	}
	if msg.VehicleID == "" {
		if c.metrics != nil {
			c.metrics.TelemetryDropped.Inc()
		}
		return
	}

	// 坏数据（坐标/进度越界、未知车辆）直接丢弃，由 Service 打点
	if _, err := c.svc.ApplyTelemetry(context.Background(), msg.VehicleID, msg.Lat, msg.Lng, msg.Progress); err != nil {
		if c.log != nil {
			c.log.Debugf("telemetry rejected vehicle=%s: %v", msg.VehicleID, err)
		}
	}
}

// Close 排空订阅并断开连接。
func (c *Consumer) Close() {
	if c.sub != nil {
		_ = c.sub.Drain()
	}
	if c.nc != nil {
		_ = c.nc.Drain()
		c.nc.Close()
	}
}
