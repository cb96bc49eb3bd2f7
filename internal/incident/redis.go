package incident

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSignal 从 Redis 读线路扰动标记。扰动数据由事故上报侧写入
// （key: disruption:route:<routeID>，带 TTL），这里只读。
// 该信号只用于给 ETA 读取结果加参考性延误标记，查询失败由调用方降级处理。
type RedisSignal struct {
	rdb *redis.Client
}

func NewRedisSignal(addr, password string, db int) *RedisSignal {
	return &RedisSignal{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// HasActiveDisruption 判断线路当前是否有活跃扰动。
// 坐标参数保留给将来做就近判断（GEO 查询），目前按整条线路粒度判断。
func (s *RedisSignal) HasActiveDisruption(ctx context.Context, routeID string, _, _ float64) (bool, error) {
	n, err := s.rdb.Exists(ctx, routeKey(routeID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping 启动时连通性检查用。
func (s *RedisSignal) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisSignal) Close() error {
	return s.rdb.Close()
}

func routeKey(routeID string) string {
	return fmt.Sprintf("disruption:route:%s", routeID)
}

// NoSignal 扰动源不可用时的空实现：永远没有扰动。
type NoSignal struct{}

func (NoSignal) HasActiveDisruption(context.Context, string, float64, float64) (bool, error) {
	return false, nil
}
