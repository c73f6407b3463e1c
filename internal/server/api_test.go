package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexhavrelock-sketch/oil-management/internal/admin"
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/game"
	"github.com/dexhavrelock-sketch/oil-management/internal/telemetry"
)

func newTestApp(t *testing.T) (*App, http.Handler) {
	t.Helper()
	engine := game.NewEngine(context.Background(), game.Options{Config: config.Default()})
	t.Cleanup(engine.Close)

	creds := admin.NewStaticCredentials(config.AdminConfig{
		Credentials: []config.AdminCredential{
			{Username: "root", Password: "hunter2", Level: "full"},
			{Username: "helper", Password: "s3cret", Level: "limited"},
		},
	})
	app := &App{
		Engine:    engine,
		Scheduler: game.NewScheduler(engine, nil),
		Admin:     admin.NewService(creds, nil),
		Telemetry: telemetry.NewMemoryRepository(),
	}
	return app, NewHandler(app)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func loginToken(t *testing.T, h http.Handler, user, pass string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/admin/login",
		map[string]string{"username": user, "password": pass}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthz(t *testing.T) {
	_, h := newTestApp(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])
}

func TestStateEndpoint_ReturnsSnapshot(t *testing.T) {
	_, h := newTestApp(t)
	rec := doJSON(t, h, http.MethodGet, "/api/state", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(100), snap.NextMiniRigCost)
	assert.Equal(t, int64(1), snap.Multiplier)
}

func TestBuyEndpoints_ReportAffordability(t *testing.T) {
	app, h := newTestApp(t)

	rec := doJSON(t, h, http.MethodPost, "/api/buy/rig", map[string]int{"tier": 0}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])

	app.Engine.AdminGrant(context.Background(), admin.LevelFull, 10000)

	rec = doJSON(t, h, http.MethodPost, "/api/buy/rig", map[string]int{"tier": 0}, nil)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])

	rec = doJSON(t, h, http.MethodPost, "/api/buy/mini-rig", nil, nil)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])
}

func TestBuyRig_MalformedBody(t *testing.T) {
	_, h := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/buy/rig", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectEndpoint_UnknownDrop(t *testing.T) {
	_, h := newTestApp(t)
	rec := doJSON(t, h, http.MethodPost, "/api/drops/nope/collect", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])
}

func TestBankEndpoints_RoundTrip(t *testing.T) {
	app, h := newTestApp(t)
	app.Engine.AdminGrant(context.Background(), admin.LevelFull, 1000)

	rec := doJSON(t, h, http.MethodPost, "/api/bank/deposit", map[string]int{"amount": 600}, nil)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])

	rec = doJSON(t, h, http.MethodPost, "/api/bank/withdraw", map[string]int{"amount": 700}, nil)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])

	rec = doJSON(t, h, http.MethodPost, "/api/bank/withdraw", map[string]int{"amount": 600}, nil)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])
}

func TestSaveEndpoints_ExportThenImport(t *testing.T) {
	app, h := newTestApp(t)
	app.Engine.AdminGrant(context.Background(), admin.LevelFull, 42000)

	rec := doJSON(t, h, http.MethodGet, "/api/save/export", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	code, _ := decodeBody(t, rec)["code"].(string)
	require.NotEmpty(t, code)

	rec = doJSON(t, h, http.MethodPost, "/api/save/import", map[string]string{"code": code}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/save/import", map[string]string{"code": "!!!"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLogin_RejectsBadCredentials(t *testing.T) {
	_, h := newTestApp(t)
	rec := doJSON(t, h, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "root", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGrant_RequiresToken(t *testing.T) {
	_, h := newTestApp(t)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/grant", map[string]int{"amount": 100}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/grant", map[string]int{"amount": 100},
		map[string]string{adminTokenHeader: "bogus"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGrant_LimitedClamped(t *testing.T) {
	_, h := newTestApp(t)
	token := loginToken(t, h, "helper", "s3cret")

	rec := doJSON(t, h, http.MethodPost, "/api/admin/grant",
		map[string]int64{"amount": 150000000}, map[string]string{adminTokenHeader: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(100000000), decodeBody(t, rec)["granted"])
}

func TestAdminQuota_LimitedForbidden(t *testing.T) {
	_, h := newTestApp(t)
	token := loginToken(t, h, "helper", "s3cret")

	rec := doJSON(t, h, http.MethodPost, "/api/admin/quota",
		map[string]int{"amount": 1000}, map[string]string{adminTokenHeader: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminEvents_AnyAdminControlsOutage(t *testing.T) {
	app, h := newTestApp(t)
	token := loginToken(t, h, "helper", "s3cret")

	rec := doJSON(t, h, http.MethodPost, "/api/admin/events/outage/start", nil,
		map[string]string{adminTokenHeader: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, app.Engine.Snapshot().OutageActive)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/events/outage/stop", nil,
		map[string]string{adminTokenHeader: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, app.Engine.Snapshot().OutageActive)
}

func TestAdminMoonRun_LimitedForbidden(t *testing.T) {
	_, h := newTestApp(t)
	limited := loginToken(t, h, "helper", "s3cret")
	full := loginToken(t, h, "root", "hunter2")

	rec := doJSON(t, h, http.MethodPost, "/api/admin/events/moonrun/start", nil,
		map[string]string{adminTokenHeader: limited})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/events/moonrun/start", nil,
		map[string]string{adminTokenHeader: full})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/events/moonrun/stop", nil,
		map[string]string{adminTokenHeader: full})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLogout_InvalidatesSession(t *testing.T) {
	_, h := newTestApp(t)
	token := loginToken(t, h, "root", "hunter2")

	rec := doJSON(t, h, http.MethodPost, "/api/admin/logout", nil,
		map[string]string{adminTokenHeader: token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/grant", map[string]int{"amount": 1},
		map[string]string{adminTokenHeader: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutesJSON_ListsRegisteredRoutes(t *testing.T) {
	_, h := newTestApp(t)
	rec := doJSON(t, h, http.MethodGet, "/_/admin/routes.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []RouteDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.NotEmpty(t, docs)

	patterns := map[string]bool{}
	for _, d := range docs {
		patterns[d.Pattern] = true
	}
	assert.True(t, patterns["/api/state"])
	assert.True(t, patterns["/api/admin/grant"])
}

func TestAdminPage_Renders(t *testing.T) {
	_, h := newTestApp(t)
	rec := doJSON(t, h, http.MethodGet, "/_/admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/state")
}

func TestTelemetryEndpoint_RecordsFlow(t *testing.T) {
	app, h := newTestApp(t)
	app.Engine.AdminGrant(context.Background(), admin.LevelFull, 10000)

	rec := doJSON(t, h, http.MethodGet, "/api/telemetry", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/telemetry?since=yesterday", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
