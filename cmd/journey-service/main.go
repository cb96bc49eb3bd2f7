package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/FleetPulse/FleetPulse/internal/common/config"
	"github.com/FleetPulse/FleetPulse/internal/common/db"
	"github.com/FleetPulse/FleetPulse/internal/common/logger"
	"github.com/FleetPulse/FleetPulse/internal/common/middleware"
	"github.com/FleetPulse/FleetPulse/internal/common/server"
	"github.com/FleetPulse/FleetPulse/internal/common/tracing"
	"github.com/FleetPulse/FleetPulse/internal/driver"
	"github.com/FleetPulse/FleetPulse/internal/incident"
	"github.com/FleetPulse/FleetPulse/internal/journey"
	"github.com/FleetPulse/FleetPulse/internal/metrics"
	"github.com/FleetPulse/FleetPulse/internal/notify"
	"github.com/FleetPulse/FleetPulse/internal/telemetry"
	"github.com/gin-gonic/gin"
)

var (
	configPath = flag.String("config", "configs/journey-service.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Driver, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&journey.VehicleRecord{}, &driver.Driver{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	collector := metrics.NewCollector()

	// 扰动信号：Redis 不可用时降级为“无扰动”
	var incidentSignal journey.IncidentSignal
	redisSignal := incident.NewRedisSignal(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisSignal.Ping(pingCtx); err != nil {
		log.Warnf("redis unavailable, incident signal disabled: %v", err)
		incidentSignal = incident.NoSignal{}
	} else {
		incidentSignal = redisSignal
		defer redisSignal.Close()
	}
	cancel()

	// 分配通知：NATS 不可用时降级为空实现（通知本来就是尽力而为）
	var notifier journey.Notifier
	natsNotifier, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.NotifySubject, log)
	if err != nil {
		log.Warnf("nats unavailable, assignment notification disabled: %v", err)
		notifier = notify.NopNotifier{}
	} else {
		notifier = natsNotifier
		defer natsNotifier.Close()
	}

	svc := journey.NewService(journey.NewRepo(gormDB), journey.ServiceOptions{
		Drivers:               driver.NewRepo(gormDB),
		Notifier:              notifier,
		Incident:              incidentSignal,
		Metrics:               collector,
		Logger:                log,
		DefaultJourneyMinutes: cfg.Journey.DefaultJourneyMinutes,
		NotifyTimeout:         time.Duration(cfg.Journey.NotifyTimeoutSeconds) * time.Second,
	})

	// 遥测订阅（NATS 不可用时只保留 HTTP 遥测入口）
	consumer, err := telemetry.NewConsumer(
		cfg.NATS.URL,
		cfg.NATS.TelemetrySubject,
		svc,
		middleware.NewTokenBucket(cfg.Journey.TelemetryBurst, cfg.Journey.TelemetryPerSecond),
		collector,
		log,
	)
	if err != nil {
		log.Warnf("telemetry consumer disabled: %v", err)
	} else {
		if err := consumer.Start(); err != nil {
			log.Warnf("telemetry subscribe failed: %v", err)
		}
		defer consumer.Close()
	}

	// 启动统一的 HTTP 服务模板
	httpServer := journey.NewHTTPServer(svc, log)
	if err := server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		return httpServer.Register(r)
	}, server.WithMetricsHandler(collector.Handler())); err != nil {
		log.Fatalf("journey-service exited with error: %v", err)
	}
}
