package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudcopper/buildwatch/adapters/http/viewmodels"
	"github.com/cloudcopper/buildwatch/domain"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/infra"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/go-chi/chi/v5"
)

// BranchInfo is the platform snapshot as seen by the status page
type BranchInfo interface {
	BranchBuild(appID models.AppID, branch string) (string, bool)
	BranchUpdated(appID models.AppID, branch string) (time.Time, bool)
}

type StatusController struct {
	log      ports.Logger
	render   infra.Render
	cfg      domain.TrackingConfig
	cache    domain.BuildCache
	platform BranchInfo
	now      func() time.Time
}

func NewStatusController(log ports.Logger, render infra.Render, cfg domain.TrackingConfig, cache domain.BuildCache, platform BranchInfo) *StatusController {
	log = log.With(slog.String("entity", "StatusController"))
	c := &StatusController{
		log:      log,
		render:   render,
		cfg:      cfg,
		cache:    cache,
		platform: platform,
		now:      time.Now,
	}
	return c
}

func (c *StatusController) Index(w http.ResponseWriter, r *http.Request) {
	apps := []*viewmodels.App{}
	for _, app := range c.cfg.Applications() {
		apps = append(apps, c.app(app))
	}
	viewmodels.SortApps(apps)
	apps, page, pages := helperPagination(r, apps)

	data := struct {
		Username string            `json:"username"`
		Tracked  int               `json:"tracked"`
		Cached   int               `json:"cached"`
		Page     int               `json:"page"`
		Pages    int               `json:"pages"`
		Apps     []*viewmodels.App `json:"apps"`
	}{
		Username: c.cfg.Credentials().Username,
		Tracked:  len(c.cfg.Applications()),
		Cached:   len(c.cache.Entries()),
		Page:     page,
		Pages:    pages,
		Apps:     apps,
	}
	_ = c.render.JSON(w, http.StatusOK, data)
}

func (c *StatusController) Get(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appID")
	app, ok := c.cfg.Application(appID)
	if !ok { // 404
		c.renderError(w, http.StatusNotFound, appID, "app is not tracked")
		return
	}
	_ = c.render.JSON(w, http.StatusOK, c.app(app))
}

func (c *StatusController) Health(w http.ResponseWriter, r *http.Request) {
	_ = c.render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *StatusController) NotFound(w http.ResponseWriter, r *http.Request) {
	c.renderError(w, http.StatusNotFound, "", "not found")
}

func (c *StatusController) app(app *models.TrackedApp) *viewmodels.App {
	branch := app.BranchOrDefault()
	notified, _ := c.cache.BuildID(app.AppID)
	build, _ := c.platform.BranchBuild(app.AppID, branch)
	updated, _ := c.platform.BranchUpdated(app.AppID, branch)
	return viewmodels.NewApp(app, notified, build, updated, c.now())
}

func (c *StatusController) renderError(w http.ResponseWriter, status int, appID models.AppID, msg string) {
	type Data struct {
		AppID models.AppID `json:"appId,omitempty"`
		Error string       `json:"error"`
	}
	_ = c.render.JSON(w, status, Data{appID, msg})
}
