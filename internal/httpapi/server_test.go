package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dcomatch/dcomatch/internal/globaltime"
)

func TestHandleHealthStampsFrozenClockInUTC(t *testing.T) {
	// Not parallel: the clock is process-global.
	frozen := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))
	globaltime.SetMockTime(frozen)
	defer globaltime.ResetTime()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	server := &Server{logger: zerolog.Nop()}
	if err := server.handleHealth(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Service string    `json:"service"`
			Time    time.Time `json:"time"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != "success" || envelope.Data.Service != "dcomatch" {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
	if !envelope.Data.Time.Equal(frozen) {
		t.Fatalf("expected the frozen instant, got %s", envelope.Data.Time)
	}
	if !strings.Contains(rec.Body.String(), `"2026-03-04T04:06:07Z"`) {
		t.Fatalf("expected a UTC timestamp on the wire, got %s", rec.Body.String())
	}
}
