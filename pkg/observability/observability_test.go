package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("job_id", "job-1").WithError(errors.New("boom")).Error("job failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "job failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["job_id"] != "job-1" {
		t.Errorf("job_id = %v", entry["job_id"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ErrorLevel, &buf)

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info line leaked through error-level logger: %s", buf.String())
	}
	logger.Error("kept")
	if buf.Len() == 0 {
		t.Error("error line missing")
	}
}

func TestInstrumentHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	h := m.InstrumentHandler("/api/v1/analytics/spatial", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/analytics/spatial", nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/analytics/spatial", "422"))
	if got != 3 {
		t.Errorf("request counter = %v, want 3", got)
	}
}

func TestMetricsHandlerExposition(t *testing.T) {
	m := NewMetrics(nil)
	m.AnalysesTotal.WithLabelValues("spatial", "success").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("regionpulse_analyses_total")) {
		t.Error("exposition missing analyses counter")
	}
}

func TestHealthCheckerNoDependencies(t *testing.T) {
	hc := NewHealthChecker(nil, nil, "test")

	status := hc.Check(context.Background())
	if status.Status != StatusHealthy {
		t.Errorf("status = %q, want healthy", status.Status)
	}
	if status.Service != "regionpulse" {
		t.Errorf("service = %q", status.Service)
	}
	if len(status.Dependencies) != 0 {
		t.Errorf("unexpected dependencies %v", status.Dependencies)
	}
}

func TestHealthCheckerRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hc := NewHealthChecker(nil, client, "test")

	status := hc.Check(context.Background())
	if status.Status != StatusHealthy {
		t.Fatalf("status = %q, want healthy", status.Status)
	}
	if dep := status.Dependencies["redis"]; dep.Status != StatusHealthy {
		t.Errorf("redis dependency = %+v", dep)
	}

	mr.Close()
	status = hc.Check(context.Background())
	if status.Status != StatusDegraded {
		t.Errorf("status after redis outage = %q, want degraded", status.Status)
	}
}

func TestHealthHandler(t *testing.T) {
	hc := NewHealthChecker(nil, nil, "1.0.0")

	rec := httptest.NewRecorder()
	hc.Handler(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if status.Version != "1.0.0" {
		t.Errorf("version = %q", status.Version)
	}
}
