package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/infra"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	apps map[models.AppID]*models.TrackedApp
}

func (f *fakeConfig) Applications() map[models.AppID]*models.TrackedApp { return f.apps }
func (f *fakeConfig) Credentials() models.Credentials {
	return models.Credentials{Username: "bot", Password: "secret"}
}
func (f *fakeConfig) BranchFor(appID models.AppID) string {
	app, _ := f.Application(appID)
	return app.BranchOrDefault()
}
func (f *fakeConfig) Application(appID models.AppID) (*models.TrackedApp, bool) {
	app, ok := f.apps[appID]
	return app, ok
}

type fakeCache map[models.AppID]models.BuildID

func (f fakeCache) IsBuildUpdated(appID models.AppID, buildID models.BuildID) bool { return false }
func (f fakeCache) BuildID(appID models.AppID) (models.BuildID, bool) {
	id, ok := f[appID]
	return id, ok
}
func (f fakeCache) Entries() map[models.AppID]models.BuildID { return f }

type fakeBranchInfo struct{}

func (fakeBranchInfo) BranchBuild(appID models.AppID, branch string) (string, bool) {
	if appID == "100" && branch == "public" {
		return "6", true
	}
	return "", false
}

func (fakeBranchInfo) BranchUpdated(appID models.AppID, branch string) (time.Time, bool) {
	if appID == "100" && branch == "public" {
		return time.Unix(1700000000, 0), true
	}
	return time.Time{}, false
}

func newTestStatusRouter() http.Handler {
	cfg := &fakeConfig{apps: map[models.AppID]*models.TrackedApp{
		"100": {AppID: "100", Targets: models.Targets{&models.MessageTarget{URL: "https://discord.example/api/webhooks/1/tokenvalue"}}},
		"200": {AppID: "200", Branch: "beta", Targets: models.Targets{&models.WorkflowTarget{Repo: "owner/repo", WorkflowID: "build.yml", AccessToken: "tkn"}}},
	}}
	c := NewStatusController(slog.Default(), infra.NewRender(), cfg, fakeCache{"100": "5"}, fakeBranchInfo{})
	c.now = func() time.Time { return time.Unix(1700000000+90, 0) }

	r := chi.NewRouter()
	r.Get("/status", c.Index)
	r.Get("/status/{appID}", c.Get)
	r.Get("/healthz", c.Health)
	r.NotFound(c.NotFound)
	return r
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	data := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data), w.Body.String())
	return w.Code, data
}

func TestStatusControllerIndex(t *testing.T) {
	assert := require.New(t)
	h := newTestStatusRouter()

	code, data := get(t, h, "/status")
	assert.Equal(http.StatusOK, code)
	assert.Equal("bot", data["username"])
	assert.NotContains(data, "password")
	assert.Equal(float64(2), data["tracked"])
	assert.Equal(float64(1), data["cached"])
	apps := data["apps"].([]interface{})
	assert.Len(apps, 2)

	first := apps[0].(map[string]interface{})
	assert.Equal("100", first["appId"])
	assert.Equal("public", first["branch"])
	assert.Equal("5", first["notifiedBuildId"])
	assert.Equal("6", first["platformBuildId"])
	assert.Equal("1m30s", first["updatedAgo"])
	assert.NotContains(first["targets"].([]interface{})[0], "tokenvalue")

	second := apps[1].(map[string]interface{})
	assert.Equal("200", second["appId"])
	assert.Equal("beta", second["branch"])
	assert.NotContains(second, "notifiedBuildId")
	assert.Equal([]interface{}{"github(owner/repo/build.yml@main)"}, second["targets"])

	_, data = get(t, h, "/status?page=2&per_page=1")
	assert.Equal(float64(2), data["page"])
	assert.Equal(float64(2), data["pages"])
	assert.Len(data["apps"], 1)
}

func TestStatusControllerGet(t *testing.T) {
	assert := require.New(t)
	h := newTestStatusRouter()

	code, data := get(t, h, "/status/200")
	assert.Equal(http.StatusOK, code)
	assert.Equal("200", data["appId"])

	code, data = get(t, h, "/status/300")
	assert.Equal(http.StatusNotFound, code)
	assert.Equal("300", data["appId"])

	code, data = get(t, h, "/nothing")
	assert.Equal(http.StatusNotFound, code)
	assert.Equal("not found", data["error"])

	code, data = get(t, h, "/healthz")
	assert.Equal(http.StatusOK, code)
	assert.Equal("ok", data["status"])
}
