package journey

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FleetPulse/FleetPulse/internal/common/logger"
)

// HTTPServer journey 域的 HTTP 入口（gin）。
type HTTPServer struct {
	svc *Service
	log logger.Logger
}

func NewHTTPServer(svc *Service, log logger.Logger) *HTTPServer {
	return &HTTPServer{svc: svc, log: log}
}

// Register 挂载 journey 路由。
func (h *HTTPServer) Register(r *gin.Engine) error {
	v1 := r.Group("/v1")
	{
		v1.POST("/vehicles", h.createVehicle)
		v1.GET("/vehicles", h.listVehicles)
		v1.GET("/vehicles/:id", h.getVehicle)

		v1.PUT("/vehicles/:id/driver", h.assignDriver)
		v1.DELETE("/vehicles/:id/driver", h.unassignDriver)

		v1.POST("/vehicles/:id/start", h.transition((*Service).Start))
		v1.POST("/vehicles/:id/stop", h.transition((*Service).Stop))
		v1.POST("/vehicles/:id/restart", h.transition((*Service).Restart))
		v1.POST("/vehicles/:id/accident", h.transition((*Service).ReportAccident))
		v1.POST("/vehicles/:id/accident/clear", h.transition((*Service).ClearAccident))
		v1.POST("/vehicles/:id/complete", h.transition((*Service).Complete))

		v1.POST("/vehicles/:id/telemetry", h.postTelemetry)
		v1.PUT("/vehicles/:id/passengers", h.putPassengers)
	}
	return nil
}

type createVehicleRequest struct {
	RouteID  string  `json:"route_id"`
	Capacity int     `json:"capacity" binding:"required"`
	StartLat float64 `json:"start_lat"`
	StartLng float64 `json:"start_lng"`
	EndLat   float64 `json:"end_lat"`
	EndLng   float64 `json:"end_lng"`
}

func (h *HTTPServer) createVehicle(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), CreateInput{
		RouteID:  req.RouteID,
		Capacity: req.Capacity,
		StartLat: req.StartLat,
		StartLng: req.StartLng,
		EndLat:   req.EndLat,
		EndLng:   req.EndLng,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVehicleResponse(rec, false))
}

func (h *HTTPServer) listVehicles(c *gin.Context) {
	status := Status(c.Query("status"))
	page, size := 1, 20
	if v, err := parsePositive(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := parsePositive(c.Query("page_size")); err == nil && v > 0 && v <= 200 {
		size = v
	}
	recs, total, err := h.svc.List(c.Request.Context(), status, (page-1)*size, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]vehicleResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toVehicleResponse(&recs[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": out, "total": total})
}

func (h *HTTPServer) getVehicle(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(view.Record, view.PossibleDelay))
}

type assignDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

func (h *HTTPServer) assignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.AssignDriver(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(rec, false))
}

func (h *HTTPServer) unassignDriver(c *gin.Context) {
	rec, err := h.svc.UnassignDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(rec, false))
}

// transition 生命周期操作的公共外壳。
func (h *HTTPServer) transition(op func(*Service, context.Context, string) (*VehicleRecord, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := op(h.svc, c.Request.Context(), c.Param("id"))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toVehicleResponse(rec, false))
	}
}

type telemetryRequest struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Progress *float64 `json:"progress,omitempty"`
}

func (h *HTTPServer) postTelemetry(c *gin.Context) {
	var req telemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.ApplyTelemetry(c.Request.Context(), c.Param("id"), req.Lat, req.Lng, req.Progress)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(rec, false))
}

type passengersRequest struct {
	Count *int `json:"count" binding:"required"`
}

func (h *HTTPServer) putPassengers(c *gin.Context) {
	var req passengersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.UpdatePassengers(c.Request.Context(), c.Param("id"), *req.Count)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(rec, false))
}

// vehicleResponse 对外的记录视图。
type vehicleResponse struct {
	ID           string  `json:"id"`
	Status       Status  `json:"status"`
	DriverID     string  `json:"driver_id,omitempty"`
	RouteID      string  `json:"route_id"`
	Capacity     int     `json:"capacity"`
	Passengers   int     `json:"passengers"`
	OverCapacity bool    `json:"over_capacity"`
	StartLat     float64 `json:"start_lat"`
	StartLng     float64 `json:"start_lng"`
	EndLat       float64 `json:"end_lat"`
	EndLng       float64 `json:"end_lng"`
	CurrentLat   float64 `json:"current_lat"`
	CurrentLng   float64 `json:"current_lng"`
	Progress     float64 `json:"progress"`
	HasAccident  bool    `json:"has_accident"`

	DepartureTime *time.Time `json:"departure_time,omitempty"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`

	// 线路附近存在活跃扰动时为 true，仅供展示参考
	PossibleDelay bool `json:"possible_delay"`
}

func toVehicleResponse(rec *VehicleRecord, possibleDelay bool) vehicleResponse {
	return vehicleResponse{
		ID:            rec.ID,
		Status:        rec.Status,
		DriverID:      rec.DriverID,
		RouteID:       rec.RouteID,
		Capacity:      rec.Capacity,
		Passengers:    rec.Passengers,
		OverCapacity:  rec.OverCapacity,
		StartLat:      rec.StartLat,
		StartLng:      rec.StartLng,
		EndLat:        rec.EndLat,
		EndLng:        rec.EndLng,
		CurrentLat:    rec.CurrentLat,
		CurrentLng:    rec.CurrentLng,
		Progress:      rec.Progress,
		HasAccident:   rec.HasAccident,
		DepartureTime: rec.DepartureTime,
		ArrivalTime:   rec.ArrivalTime,
		PossibleDelay: possibleDelay,
	}
}

// writeError 按错误类别映射状态码：校验 400 / 不变量拒绝 409 / 未找到 404。
func (h *HTTPServer) writeError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case IsInvariant(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if h.log != nil {
			h.log.Errorf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parsePositive(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
