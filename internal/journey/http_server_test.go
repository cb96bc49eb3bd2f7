package journey

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(ServiceOptions{})
	r := gin.New()
	if err := NewHTTPServer(svc, nil).Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHTTPCreateAndLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/vehicles", gin.H{
		"route_id": "route-9",
		"capacity": 50,
		"start_lat": 39.9042, "start_lng": 116.4074,
		"end_lat": 39.9897, "end_lng": 116.4803,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created vehicleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Status != StatusStopped {
		t.Fatalf("unexpected created record: %+v", created)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/vehicles/"+created.ID+"/start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/vehicles/"+created.ID+"/telemetry", gin.H{
		"lat": 39.95, "lng": 116.44, "progress": 40,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on telemetry, got %d: %s", w.Code, w.Body.String())
	}
	var after vehicleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after.Progress != 40 || after.ArrivalTime == nil {
		t.Fatalf("expected progress applied with eta, got %+v", after)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	r, svc := newTestRouter(t)
	rec := createVehicle(t, svc)

	// 校验错误 -> 400
	w := doJSON(t, r, http.MethodPost, "/v1/vehicles", gin.H{"capacity": -1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad capacity, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, "/v1/vehicles/"+rec.ID+"/passengers", gin.H{"count": -1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative passengers, got %d", w.Code)
	}

	// 不变量拒绝 -> 409
	w = doJSON(t, r, http.MethodPost, "/v1/vehicles/"+rec.ID+"/accident", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on accident, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/v1/vehicles/"+rec.ID+"/start", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for start during accident, got %d", w.Code)
	}

	// 未找到 -> 404
	w = doJSON(t, r, http.MethodGet, "/v1/vehicles/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown vehicle, got %d", w.Code)
	}
}

func TestHTTPPassengersZeroIsValid(t *testing.T) {
	r, svc := newTestRouter(t)
	rec := createVehicle(t, svc)

	// count 用指针绑定，0 不能被 required 吞掉
	w := doJSON(t, r, http.MethodPut, "/v1/vehicles/"+rec.ID+"/passengers", gin.H{"count": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for zero passengers, got %d: %s", w.Code, w.Body.String())
	}
}
