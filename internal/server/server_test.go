package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/carpark/internal/clock"
	"github.com/smallbiznis/carpark/internal/config"
	ledgerservice "github.com/smallbiznis/carpark/internal/ledger/service"
	"github.com/smallbiznis/carpark/internal/observability"
	obsmetrics "github.com/smallbiznis/carpark/internal/observability/metrics"
	"github.com/smallbiznis/carpark/internal/plate"
	"github.com/smallbiznis/carpark/internal/tariff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *clock.FakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Lot: config.LotConfig{
			Floors:               5,
			SpotsPerFloor:        50,
			HourlyRates:          []float64{6, 5, 4, 3, 2},
			GraceMinutes:         30,
			PaymentWindowMinutes: 15,
		},
		Plate: config.PlateConfig{
			EnforcedCountry: "PL",
			BasicPrefixes:   "BCDEFGKLNOPRSTWZ",
			SpecialPrefixes: "HU",
		},
	}

	fc := clock.NewFakeClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := ledgerservice.NewService(ledgerservice.Params{
		Cfg:        cfg,
		Log:        zap.NewNop(),
		Clock:      fc,
		GenID:      node,
		Validator:  plate.NewFromConfig(cfg),
		Calculator: tariff.NewFromConfig(cfg),
	})

	httpMetrics, err := obsmetrics.NewHTTPMetrics(obsmetrics.Config{ServiceName: "carpark"}, noop.NewMeterProvider())
	require.NoError(t, err)

	engine := NewEngine(observability.Config{}, httpMetrics)
	srv := NewServer(ServerParams{Gin: engine, ParkingSvc: svc})
	srv.RegisterRoutes()
	return srv, fc
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func TestEntryEndpointCreatesSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/entry", gin.H{
		"country": "PL", "registration_no": "WA12345", "floor": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Floor int `json:"floor"`
		Spot  int `json:"spot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Floor)
	assert.Equal(t, 1, resp.Spot)
}

func TestEntryEndpointRejectsInvalidPlate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/entry", gin.H{
		"country": "PL", "registration_no": "QX12345", "floor": 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Equal(t, "invalid_registration_no", resp.Error.Message)
}

func TestEntryEndpointDuplicateIsConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	body := gin.H{"country": "PL", "registration_no": "WA12345", "floor": 0}
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/entry", body).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, srv, http.MethodPost, "/entry", body).Code)
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	srv, fc := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/entry", gin.H{
		"country": "PL", "registration_no": "WA12345", "floor": 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	fc.Advance(90 * time.Minute)

	rec = doJSON(t, srv, http.MethodGet, "/payment/PL/WA12345", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote struct {
		Minutes int64   `json:"minutes"`
		Fee     float64 `json:"fee"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, int64(90), quote.Minutes)
	assert.Equal(t, 6.0, quote.Fee)

	rec = doJSON(t, srv, http.MethodPost, "/payment/PL/WA12345", gin.H{"amount": 3.0})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/payment/PL/WA12345", gin.H{"amount": 6.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/entry/PL/WA12345", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/entry/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history["PL_WA12345"], 1)
}

func TestExitUnpaidIsPaymentRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/entry", gin.H{
		"country": "PL", "registration_no": "WA12345", "floor": 0,
	}).Code)

	rec := doJSON(t, srv, http.MethodDelete, "/entry/PL/WA12345", nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestExitUnknownVehicleIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/entry/PL/WA12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangeFloorEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/entry", gin.H{
		"country": "PL", "registration_no": "WA12345", "floor": 0,
	}).Code)

	rec := doJSON(t, srv, http.MethodPatch, "/entry/PL/WA12345", gin.H{"new_floor": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Floor int `json:"floor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Floor)

	rec = doJSON(t, srv, http.MethodPatch, "/entry/PL/WA12345", gin.H{"new_floor": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVehiclesEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/entry", gin.H{
			"country": "PL", "registration_no": fmt.Sprintf("WA100%d", i), "floor": 0,
		}).Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/vehicles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Vehicles []json.RawMessage `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Vehicles, 3)

	rec = doJSON(t, srv, http.MethodGet, "/vehicles/search?q=WA1001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Vehicles, 1)

	rec = doJSON(t, srv, http.MethodGet, "/vehicles/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLockdownEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/admin/lockdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Enabled bool `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.Enabled)

	rec = doJSON(t, srv, http.MethodPost, "/admin/lockdown", gin.H{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/entry", gin.H{
		"country": "PL", "registration_no": "WA12345", "floor": 0,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/admin/lockdown", gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/admin/lockdown", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
