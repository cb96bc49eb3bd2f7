package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config journey-service 应用配置。
type Config struct {
	Server   ServerConfig   `json:"server" validate:"required"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	NATS     NATSConfig     `json:"nats"`
	Auth     AuthConfig     `json:"auth"`
	Log      LogConfig      `json:"log"`
	Journey  JourneyConfig  `json:"journey" validate:"required"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name" validate:"required"` // 服务名称
	Host     string `json:"host"`                     // 监听地址
	HTTPPort int    `json:"http_port" validate:"gt=0"`
}

// DatabaseConfig MySQL 配置
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"` // 可被环境变量 FLEETPULSE_DB_PASSWORD 覆盖
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// RedisConfig 扰动信号 / 缓存用的 Redis
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"` // 可被环境变量 FLEETPULSE_REDIS_PASSWORD 覆盖
	DB       int    `json:"db"`
}

// ConsulConfig Consul 配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig 链路追踪配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler" validate:"gte=0,lte=1"` // 采样率 0.0-1.0
}

// NATSConfig 遥测订阅与通知发布
type NATSConfig struct {
	URL              string `json:"url"`
	TelemetrySubject string `json:"telemetry_subject"` // 通配订阅，如 fleet.telemetry.>
	NotifySubject    string `json:"notify_subject"`    // 司机分配通知发布主题
}

// AuthConfig 后台 API 的 JWT 鉴权配置。token 由外部的账号体系签发，这里只校验。
type AuthConfig struct {
	Enabled     bool                `json:"enabled"`
	JWTSecret   string              `json:"jwt_secret"` // 可被环境变量 FLEETPULSE_JWT_SECRET 覆盖
	Issuer      string              `json:"issuer"`
	Audience    string              `json:"audience"`
	PublicPaths []string            `json:"public_paths"` // 免鉴权路径（精确匹配）
	RBAC        map[string][]string `json:"rbac"`         // path -> 要求角色（有交集即放行）
}

// LogConfig 日志配置
type LogConfig struct {
	Driver string `json:"driver"` // logrus, zap
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`
}

// JourneyConfig 行程引擎配置
type JourneyConfig struct {
	// restart 的默认行程时长（分钟）。原型里是写死的 60，这里做成配置。
	DefaultJourneyMinutes int `json:"default_journey_minutes" validate:"gt=0"`

	// 遥测限流（令牌桶）
	TelemetryBurst     int `json:"telemetry_burst" validate:"gte=0"`
	TelemetryPerSecond int `json:"telemetry_per_second" validate:"gte=0"`

	// 后台 API 限流（滑动窗口）
	APIRateWindowSeconds int `json:"api_rate_window_seconds" validate:"gte=0"`
	APIRateMax           int `json:"api_rate_max" validate:"gte=0"`

	// 通知调用超时（秒）
	NotifyTimeoutSeconds int `json:"notify_timeout_seconds" validate:"gte=0"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置：.env -> JSON 文件 -> 环境变量覆盖敏感项 -> 校验。
// 配置文件不存在时退回默认配置（开发环境）。
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		// .env 不存在不算错误
		_ = godotenv.Load()

		cfg := defaultConfig()
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			logrus.Warnf("config file not found: %s, using default config", configPath)
		} else {
			data, readErr := os.ReadFile(configPath)
			if readErr != nil {
				err = fmt.Errorf("read config file: %w", readErr)
				return
			}
			if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
				err = fmt.Errorf("parse config file: %w", jsonErr)
				return
			}
		}

		applyEnvOverrides(cfg)

		if vErr := validator.New().Struct(cfg); vErr != nil {
			err = fmt.Errorf("invalid config: %w", vErr)
			return
		}
		globalConfig = cfg
	})

	if err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// GetConfig 获取全局配置（未加载时返回默认配置）。
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// applyEnvOverrides 敏感项允许用环境变量覆盖，避免写进配置文件。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLEETPULSE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FLEETPULSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FLEETPULSE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("FLEETPULSE_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
}

// defaultConfig 默认配置（开发环境）。
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "journey-service",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "fleetpulse",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		NATS: NATSConfig{
			URL:              "nats://localhost:4222",
			TelemetrySubject: "fleet.telemetry.>",
			NotifySubject:    "fleet.notify.assignment",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Driver: "logrus",
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/journey-service.log",
		},
		Journey: JourneyConfig{
			DefaultJourneyMinutes: 60,
			TelemetryBurst:        200,
			TelemetryPerSecond:    100,
			APIRateWindowSeconds:  1,
			APIRateMax:            200,
			NotifyTimeoutSeconds:  3,
		},
	}
}
