package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/FleetPulse/FleetPulse/internal/telemetry"
)

// telemetry-probe 往遥测主题发一段合成轨迹，联调/压测 journey-service 用。
// 从起点到终点线性插值坐标和进度。
var (
	natsURL   = flag.String("nats", "nats://localhost:4222", "NATS 地址")
	subject   = flag.String("subject-prefix", "fleet.telemetry", "主题前缀，实际主题为 <prefix>.<vehicle-id>")
	vehicleID = flag.String("vehicle", "", "目标车辆 ID（必填）")
	startLat  = flag.Float64("start-lat", 39.9042, "起点纬度")
	startLng  = flag.Float64("start-lng", 116.4074, "起点经度")
	endLat    = flag.Float64("end-lat", 39.9897, "终点纬度")
	endLng    = flag.Float64("end-lng", 116.4803, "终点经度")
	steps     = flag.Int("steps", 20, "上报条数")
	interval  = flag.Duration("interval", 3*time.Second, "上报间隔")
)

func main() {
	flag.Parse()
	if *vehicleID == "" {
		log.Fatal("-vehicle is required")
	}
	if *steps < 2 {
		log.Fatal("-steps must be at least 2")
	}

	nc, err := nats.Connect(*natsURL, nats.Name("telemetry-probe"))
	if err != nil {
		log.Fatalf("connect nats: %v", err)
	}
	defer nc.Drain()

	subj := fmt.Sprintf("%s.%s", *subject, *vehicleID)
	for i := 0; i < *steps; i++ {
		frac := float64(i) / float64(*steps-1)
		progress := frac * 100
		msg := telemetry.PositionMessage{
			VehicleID:  *vehicleID,
			Lat:        *startLat + (*endLat-*startLat)*frac,
			Lng:        *startLng + (*endLng-*startLng)*frac,
			Progress:   &progress,
			RecordedAt: time.Now(),
		}
		b, err := json.Marshal(msg)
		if err != nil {
			log.Fatalf("marshal: %v", err)
		}
		if err := nc.Publish(subj, b); err != nil {
			log.Fatalf("publish: %v", err)
		}
		log.Printf("published step %d/%d progress=%.1f%%", i+1, *steps, progress)
		if i < *steps-1 {
			time.Sleep(*interval)
		}
	}
}
